package audioswitch

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/lxn/win"
	wca "github.com/moutend/go-wca"
	"go.uber.org/zap"
)

// returned by CoInitializeEx when the thread already joined a different apartment.
// COM is usable in that case, but we must not balance it with CoUninitialize
const rpcEChangedMode = win.HRESULT(-0x7ffefefa) // 0x80010106

var errAlreadyReleased = errors.New("audio system already released")

type wcaAudioSystem struct {
	logger *zap.SugaredLogger

	mmDeviceEnumerator *wca.IMMDeviceEnumerator

	needUninitialize bool
	released         bool
}

// NewAudioSystem initializes COM on the calling OS thread and creates the
// endpoint enumerator. The returned AudioSystem must be released on the same goroutine
func NewAudioSystem(logger *zap.SugaredLogger) (AudioSystem, error) {
	logger = logger.Named("audio_system")

	// COM apartments are per OS thread, so we can't let the scheduler move us around
	runtime.LockOSThread()

	as := &wcaAudioSystem{
		logger: logger,
	}

	hr := win.CoInitializeEx(nil, win.COINIT_APARTMENTTHREADED)
	switch {
	case hr == win.S_OK || hr == win.S_FALSE:
		as.needUninitialize = true
	case hr == rpcEChangedMode:
		logger.Debugw("COM already initialized with a different threading model", "hresult", fmt.Sprintf("0x%08x", uint32(hr)))
	default:
		logger.Warnw("Failed to initialize COM", "hresult", fmt.Sprintf("0x%08x", uint32(hr)))
		runtime.UnlockOSThread()

		return nil, ErrAudioInit
	}

	if err := wca.CoCreateInstance(
		wca.CLSID_MMDeviceEnumerator,
		0,
		wca.CLSCTX_ALL,
		wca.IID_IMMDeviceEnumerator,
		&as.mmDeviceEnumerator,
	); err != nil {
		logger.Warnw("Failed to create MMDeviceEnumerator", "error", err)
		as.Release()

		return nil, fmt.Errorf("%w: %v", ErrEnumeratorInit, err)
	}

	logger.Debug("Created WCA audio system instance")

	return as, nil
}

func (as *wcaAudioSystem) PlaybackDevices() ([]DeviceInfo, error) {
	if as.released {
		return nil, errAlreadyReleased
	}

	var deviceCollection *wca.IMMDeviceCollection

	if err := as.mmDeviceEnumerator.EnumAudioEndpoints(wca.ERender, wca.DEVICE_STATE_ACTIVE, &deviceCollection); err != nil {
		as.logger.Warnw("Failed to enumerate active audio endpoints", "error", err)
		return nil, fmt.Errorf("enumerate active audio endpoints: %w", err)
	}
	defer deviceCollection.Release()

	var deviceCount uint32
	if err := deviceCollection.GetCount(&deviceCount); err != nil {
		as.logger.Warnw("Failed to count active audio endpoints", "error", err)
		return nil, fmt.Errorf("count active audio endpoints: %w", err)
	}

	devices := make([]DeviceInfo, 0, deviceCount)

	for deviceIdx := uint32(0); deviceIdx < deviceCount; deviceIdx++ {
		info, err := as.readDevice(deviceCollection, deviceIdx)
		if err != nil {
			as.logger.Debugw("Skipping unreadable audio endpoint", "index", deviceIdx, "error", err)
			continue
		}

		devices = append(devices, info)
	}

	as.logger.Debugw("Enumerated playback devices", "count", len(devices), "skipped", int(deviceCount)-len(devices))

	return devices, nil
}

func (as *wcaAudioSystem) readDevice(deviceCollection *wca.IMMDeviceCollection, deviceIdx uint32) (DeviceInfo, error) {
	var endpoint *wca.IMMDevice

	if err := deviceCollection.Item(deviceIdx, &endpoint); err != nil {
		return DeviceInfo{}, fmt.Errorf("get endpoint from collection: %w", err)
	}
	defer endpoint.Release()

	var endpointID string
	if err := endpoint.GetId(&endpointID); err != nil {
		return DeviceInfo{}, fmt.Errorf("get endpoint id: %w", err)
	}

	var propertyStore *wca.IPropertyStore
	if err := endpoint.OpenPropertyStore(wca.STGM_READ, &propertyStore); err != nil {
		return DeviceInfo{}, fmt.Errorf("open endpoint property store: %w", err)
	}
	defer propertyStore.Release()

	value := &wca.PROPVARIANT{}
	if err := propertyStore.GetValue(&wca.PKEY_Device_FriendlyName, value); err != nil {
		return DeviceInfo{}, fmt.Errorf("get endpoint friendly name: %w", err)
	}

	friendlyName := value.String()
	if friendlyName == "" {
		return DeviceInfo{}, errors.New("endpoint has no friendly name")
	}

	return DeviceInfo{Name: friendlyName, ID: endpointID}, nil
}

func (as *wcaAudioSystem) DefaultDeviceID() (string, error) {
	if as.released {
		return "", errAlreadyReleased
	}

	var defaultEndpoint *wca.IMMDevice

	if err := as.mmDeviceEnumerator.GetDefaultAudioEndpoint(wca.ERender, wca.EMultimedia, &defaultEndpoint); err != nil {
		as.logger.Debugw("Failed to get default audio endpoint", "error", err)
		return "", fmt.Errorf("get default audio endpoint: %w", err)
	}
	defer defaultEndpoint.Release()

	var endpointID string
	if err := defaultEndpoint.GetId(&endpointID); err != nil {
		as.logger.Debugw("Failed to get default audio endpoint id", "error", err)
		return "", fmt.Errorf("get default audio endpoint id: %w", err)
	}

	return endpointID, nil
}

func (as *wcaAudioSystem) SetDefault(id string, role Role) error {
	if as.released {
		return errAlreadyReleased
	}

	if err := setDefaultEndpoint(id, role); err != nil {
		as.logger.Warnw("Failed to set default audio endpoint", "id", id, "role", role, "error", err)
		return fmt.Errorf("set default audio endpoint for %s role: %w", role, err)
	}

	as.logger.Debugw("Set default audio endpoint", "id", id, "role", role)

	return nil
}

func (as *wcaAudioSystem) Release() error {
	if as.released {
		return nil
	}
	as.released = true

	if as.mmDeviceEnumerator != nil {
		as.mmDeviceEnumerator.Release()
		as.mmDeviceEnumerator = nil
	}

	if as.needUninitialize {
		win.CoUninitialize()
	}

	runtime.UnlockOSThread()

	as.logger.Debug("Released WCA audio system")

	return nil
}
