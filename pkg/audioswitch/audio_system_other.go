//go:build !windows
// +build !windows

package audioswitch

import (
	"runtime"

	"go.uber.org/zap"
)

// NewAudioSystem always fails outside of Windows, the default-device policy
// service has no equivalent we drive on other hosts
func NewAudioSystem(logger *zap.SugaredLogger) (AudioSystem, error) {
	logger.Named("audio_system").Warnw("No audio system available for this platform", "os", runtime.GOOS)

	return nil, ErrUnsupportedPlatform
}
