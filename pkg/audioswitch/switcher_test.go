package audioswitch

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type setCall struct {
	id   string
	role Role
}

// fakeAudioSystem keeps the default device in memory so consecutive switches can be observed
type fakeAudioSystem struct {
	devices   []DeviceInfo
	defaultID string

	devicesErr error
	defaultErr error
	setErr     error

	setCalls []setCall
	released bool
}

func (f *fakeAudioSystem) PlaybackDevices() ([]DeviceInfo, error) {
	if f.devicesErr != nil {
		return nil, f.devicesErr
	}

	return append([]DeviceInfo(nil), f.devices...), nil
}

func (f *fakeAudioSystem) DefaultDeviceID() (string, error) {
	if f.defaultErr != nil {
		return "", f.defaultErr
	}

	return f.defaultID, nil
}

func (f *fakeAudioSystem) SetDefault(id string, role Role) error {
	f.setCalls = append(f.setCalls, setCall{id: id, role: role})
	if f.setErr != nil {
		return f.setErr
	}

	f.defaultID = id
	return nil
}

func (f *fakeAudioSystem) Release() error {
	f.released = true
	return nil
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(title string, message string) {
	n.messages = append(n.messages, message)
}

func scenarioDevices() []DeviceInfo {
	return []DeviceInfo{
		{Name: "Speakers", ID: "{0.0.0.00000000}.{speakers}"},
		{Name: "Headphones", ID: "{0.0.0.00000000}.{headphones}"},
		{Name: "HDMI", ID: "{0.0.0.00000000}.{hdmi}"},
	}
}

func newTestSwitcher(system AudioSystem) *Switcher {
	return NewSwitcher(zap.NewNop().Sugar(), system, nil, nil)
}

func TestListMarksDefault(t *testing.T) {
	system := &fakeAudioSystem{devices: scenarioDevices(), defaultID: "{0.0.0.00000000}.{headphones}"}

	var out bytes.Buffer
	require.NoError(t, newTestSwitcher(system).List(&out))

	assert.Equal(t, "0: Speakers\n1: Headphones [default]\n2: HDMI\n", out.String())
	assert.Empty(t, system.setCalls)
}

func TestListWithoutKnownDefault(t *testing.T) {
	system := &fakeAudioSystem{devices: scenarioDevices(), defaultErr: errors.New("element not found")}

	var out bytes.Buffer
	require.NoError(t, newTestSwitcher(system).List(&out))

	assert.Equal(t, "0: Speakers\n1: Headphones\n2: HDMI\n", out.String())
}

func TestListEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newTestSwitcher(&fakeAudioSystem{}).List(&out))

	assert.Empty(t, out.String())
}

func TestListEnumerationFailure(t *testing.T) {
	enumErr := errors.New("enumerator gone")
	system := &fakeAudioSystem{devicesErr: enumErr}

	var out bytes.Buffer
	err := newTestSwitcher(system).List(&out)

	require.Error(t, err)
	assert.ErrorIs(t, err, enumErr)
	assert.Empty(t, out.String())
}

func TestSelectIndex(t *testing.T) {
	system := &fakeAudioSystem{devices: scenarioDevices(), defaultID: "{0.0.0.00000000}.{speakers}"}

	require.NoError(t, newTestSwitcher(system).SelectIndex(2))

	assert.Equal(t, []setCall{{id: "{0.0.0.00000000}.{hdmi}", role: RoleConsole}}, system.setCalls)
	assert.Equal(t, "{0.0.0.00000000}.{hdmi}", system.defaultID)
}

func TestSelectIndexIsIdempotent(t *testing.T) {
	system := &fakeAudioSystem{devices: scenarioDevices(), defaultID: "{0.0.0.00000000}.{speakers}"}

	require.NoError(t, newTestSwitcher(system).SelectIndex(1))
	require.NoError(t, newTestSwitcher(system).SelectIndex(1))

	assert.Equal(t, "{0.0.0.00000000}.{headphones}", system.defaultID)
}

func TestSelectIndexOutOfRange(t *testing.T) {
	for _, index := range []int{-1, 3, 100} {
		system := &fakeAudioSystem{devices: scenarioDevices(), defaultID: "{0.0.0.00000000}.{speakers}"}

		err := newTestSwitcher(system).SelectIndex(index)

		assert.ErrorIs(t, err, ErrInvalidIndex, "index %d", index)
		assert.Empty(t, system.setCalls, "index %d", index)
		assert.Equal(t, "{0.0.0.00000000}.{speakers}", system.defaultID, "index %d", index)
	}
}

func TestSelectIndexOnEmptyList(t *testing.T) {
	system := &fakeAudioSystem{}

	assert.ErrorIs(t, newTestSwitcher(system).SelectIndex(0), ErrInvalidIndex)
	assert.Empty(t, system.setCalls)
}

func TestSelectNextRotation(t *testing.T) {
	system := &fakeAudioSystem{devices: scenarioDevices(), defaultID: "{0.0.0.00000000}.{headphones}"}

	require.NoError(t, newTestSwitcher(system).SelectNext())
	assert.Equal(t, "{0.0.0.00000000}.{hdmi}", system.defaultID)

	// last device wraps around to the first
	require.NoError(t, newTestSwitcher(system).SelectNext())
	assert.Equal(t, "{0.0.0.00000000}.{speakers}", system.defaultID)
}

func TestSelectNextSingleDevice(t *testing.T) {
	only := DeviceInfo{Name: "Speakers", ID: "{speakers}"}
	system := &fakeAudioSystem{devices: []DeviceInfo{only}, defaultID: only.ID}

	require.NoError(t, newTestSwitcher(system).SelectNext())

	assert.Equal(t, []setCall{{id: only.ID, role: RoleConsole}}, system.setCalls)
}

func TestSelectNextUnknownDefault(t *testing.T) {
	system := &fakeAudioSystem{devices: scenarioDevices(), defaultID: "{unplugged}"}

	require.NoError(t, newTestSwitcher(system).SelectNext())
	assert.Equal(t, "{0.0.0.00000000}.{speakers}", system.defaultID)

	system = &fakeAudioSystem{devices: scenarioDevices(), defaultErr: errors.New("element not found")}

	require.NoError(t, newTestSwitcher(system).SelectNext())
	assert.Equal(t, "{0.0.0.00000000}.{speakers}", system.defaultID)
}

func TestSelectNextEmptyList(t *testing.T) {
	system := &fakeAudioSystem{defaultErr: errors.New("element not found")}

	assert.ErrorIs(t, newTestSwitcher(system).SelectNext(), ErrNoDevices)
	assert.Empty(t, system.setCalls)
}

func TestSetterFailureIsReported(t *testing.T) {
	setErr := errors.New("access denied")
	notifier := &recordingNotifier{}
	system := &fakeAudioSystem{devices: scenarioDevices(), defaultID: "{0.0.0.00000000}.{speakers}", setErr: setErr}

	err := NewSwitcher(zap.NewNop().Sugar(), system, notifier, nil).SelectIndex(1)

	assert.ErrorIs(t, err, setErr)
	assert.Contains(t, err.Error(), "Headphones")
	assert.Empty(t, notifier.messages)
}

func TestSwitchTargetsConfiguredRoles(t *testing.T) {
	notifier := &recordingNotifier{}
	system := &fakeAudioSystem{devices: scenarioDevices(), defaultID: "{0.0.0.00000000}.{speakers}"}
	config := &CanonicalConfig{Roles: []Role{RoleConsole, RoleMultimedia, RoleCommunications}}

	require.NoError(t, NewSwitcher(zap.NewNop().Sugar(), system, notifier, config).SelectIndex(2))

	assert.Equal(t, []setCall{
		{id: "{0.0.0.00000000}.{hdmi}", role: RoleConsole},
		{id: "{0.0.0.00000000}.{hdmi}", role: RoleMultimedia},
		{id: "{0.0.0.00000000}.{hdmi}", role: RoleCommunications},
	}, system.setCalls)
	assert.Equal(t, []string{"HDMI"}, notifier.messages)
}

func TestDevicesReadOnce(t *testing.T) {
	system := &fakeAudioSystem{devices: scenarioDevices(), defaultID: "{0.0.0.00000000}.{speakers}"}
	switcher := newTestSwitcher(system)

	devices, defaultID, err := switcher.Devices()
	require.NoError(t, err)
	assert.Len(t, devices, 3)
	assert.Equal(t, "{0.0.0.00000000}.{speakers}", defaultID)

	system.devices = nil
	devices, _, err = switcher.Devices()
	require.NoError(t, err)
	assert.Len(t, devices, 3)
}

func TestNextIndex(t *testing.T) {
	devices := scenarioDevices()

	tests := []struct {
		name      string
		defaultID string
		want      int
	}{
		{"first", devices[0].ID, 1},
		{"middle", devices[1].ID, 2},
		{"last wraps", devices[2].ID, 0},
		{"unknown", "{gone}", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextIndex(devices, tt.defaultID))
		})
	}
}
