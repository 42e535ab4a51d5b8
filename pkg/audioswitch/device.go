// Package audioswitch lists the host's audio playback devices and switches
// the system default output device between them
package audioswitch

import (
	"errors"
	"fmt"
	"strings"
)

// DeviceInfo is a single active playback endpoint as reported by the platform
type DeviceInfo struct {
	Name string // Friendly name of the device, e.g. "Speakers (Realtek Audio)"
	ID   string // Opaque endpoint id, compared only by equality
}

// Role selects which of the platform's per-usage default devices is addressed.
// Values match the Core Audio ERole enumeration
type Role uint32

const (
	RoleConsole Role = iota
	RoleMultimedia
	RoleCommunications
)

var roleNames = map[Role]string{
	RoleConsole:        "console",
	RoleMultimedia:     "multimedia",
	RoleCommunications: "communications",
}

var (
	// ErrAudioInit is returned when the audio subsystem can't be initialized
	ErrAudioInit = errors.New("unable to initialize COM")

	// ErrEnumeratorInit is returned when the device enumerator can't be created
	ErrEnumeratorInit = errors.New("unable to initialize device enumerator")

	// ErrUnsupportedPlatform is returned on hosts without the Core Audio services
	ErrUnsupportedPlatform = errors.New("default device switching is only supported on Windows")

	errUnknownRole = errors.New("unknown role")
)

// ParseRole converts a role name from the config into a Role
func ParseRole(name string) (Role, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	for role, roleName := range roleNames {
		if roleName == name {
			return role, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", errUnknownRole, name)
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}

	return fmt.Sprintf("role(%d)", uint32(r))
}

// DeviceReader reads the playback device directory
type DeviceReader interface {
	// PlaybackDevices returns active render endpoints in enumeration order.
	// Devices whose name or id can't be read are left out
	PlaybackDevices() ([]DeviceInfo, error)

	// DefaultDeviceID returns the id of the default render endpoint for the multimedia role
	DefaultDeviceID() (string, error)
}

// DefaultSetter changes the system default playback device
type DefaultSetter interface {
	SetDefault(id string, role Role) error
}

// AudioSystem is a scoped handle to the host audio subsystem. Everything it
// acquires is given back by Release
type AudioSystem interface {
	DeviceReader
	DefaultSetter

	Release() error
}
