package audioswitch

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

const defaultMarker = " [default]"

var (
	// ErrInvalidIndex is returned when a device index is outside the device list
	ErrInvalidIndex = errors.New("invalid index, see --help")

	// ErrNoDevices is returned when there's no active playback device to switch to
	ErrNoDevices = errors.New("no active playback devices")
)

// Switcher performs the user facing operations on top of an AudioSystem.
// It reads the device list once and works off that snapshot, so indices
// only stay meaningful between runs as long as no device comes or goes
type Switcher struct {
	logger   *zap.SugaredLogger
	system   AudioSystem
	notifier Notifier
	roles    []Role

	loaded    bool
	devices   []DeviceInfo
	defaultID string
}

// NewSwitcher creates a Switcher. When config is nil the console role is targeted
func NewSwitcher(logger *zap.SugaredLogger, system AudioSystem, notifier Notifier, config *CanonicalConfig) *Switcher {
	roles := []Role{RoleConsole}
	if config != nil && len(config.Roles) > 0 {
		roles = config.Roles
	}

	if notifier == nil {
		notifier = nopNotifier{}
	}

	return &Switcher{
		logger:   logger.Named("switcher"),
		system:   system,
		notifier: notifier,
		roles:    roles,
	}
}

// Devices returns the playback devices and the id of the current default.
// The default id is empty when the platform doesn't report one
func (s *Switcher) Devices() ([]DeviceInfo, string, error) {
	if s.loaded {
		return s.devices, s.defaultID, nil
	}

	devices, err := s.system.PlaybackDevices()
	if err != nil {
		s.logger.Warnw("Failed to get playback devices", "error", err)
		return nil, "", fmt.Errorf("get playback devices: %w", err)
	}

	defaultID, err := s.system.DefaultDeviceID()
	if err != nil {
		s.logger.Debugw("No default playback device reported", "error", err)
		defaultID = ""
	}

	s.devices = devices
	s.defaultID = defaultID
	s.loaded = true

	s.logger.Debugw("Loaded playback devices", "count", len(devices), "defaultID", defaultID)

	return devices, defaultID, nil
}

// List writes one line per device, marking the current default
func (s *Switcher) List(w io.Writer) error {
	devices, defaultID, err := s.Devices()
	if err != nil {
		return err
	}

	for idx, device := range devices {
		marker := ""
		if defaultID != "" && device.ID == defaultID {
			marker = defaultMarker
		}

		if _, err := fmt.Fprintf(w, "%d: %s%s\n", idx, device.Name, marker); err != nil {
			return fmt.Errorf("write device list: %w", err)
		}
	}

	return nil
}

// SelectIndex makes the device at index the default
func (s *Switcher) SelectIndex(index int) error {
	devices, _, err := s.Devices()
	if err != nil {
		return err
	}

	if index < 0 || index >= len(devices) {
		s.logger.Debugw("Device index out of range", "index", index, "count", len(devices))
		return fmt.Errorf("select device %d of %d: %w", index, len(devices), ErrInvalidIndex)
	}

	return s.activate(devices[index])
}

// SelectNext makes the device after the current default the new default,
// wrapping around to the first device
func (s *Switcher) SelectNext() error {
	devices, defaultID, err := s.Devices()
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		s.logger.Debug("No devices to rotate through")
		return ErrNoDevices
	}

	return s.activate(devices[nextIndex(devices, defaultID)])
}

// nextIndex returns the index following the device with defaultID, or 0 when
// that device is last or not in the list at all
func nextIndex(devices []DeviceInfo, defaultID string) int {
	if defaultID == "" {
		return 0
	}

	for idx, device := range devices {
		if device.ID == defaultID {
			return (idx + 1) % len(devices)
		}
	}

	return 0
}

func (s *Switcher) activate(device DeviceInfo) error {
	for _, role := range s.roles {
		if err := s.system.SetDefault(device.ID, role); err != nil {
			s.logger.Warnw("Failed to switch default device", "device", device.Name, "role", role, "error", err)
			return fmt.Errorf("set %q as default device: %w", device.Name, err)
		}
	}

	s.logger.Infow("Switched default playback device", "device", device.Name, "id", device.ID, "roles", s.roles)
	s.notifier.Notify("Audio output changed", device.Name)

	return nil
}
