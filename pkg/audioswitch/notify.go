package audioswitch

import (
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

// Notifier provides generic notification sending
type Notifier interface {
	Notify(title string, message string)
}

// ToastNotifier provides toast notifications for Windows
type ToastNotifier struct {
	logger *zap.SugaredLogger
}

// NewToastNotifier creates a new ToastNotifier
func NewToastNotifier(logger *zap.SugaredLogger) (*ToastNotifier, error) {
	logger = logger.Named("notifier")
	tn := &ToastNotifier{logger: logger}

	logger.Debug("Created toast notifier instance")

	return tn, nil
}

// Notify sends a toast notification (or falls back to other types of notification for older Windows versions)
func (tn *ToastNotifier) Notify(title string, message string) {
	tn.logger.Debugw("Sending toast notification", "title", title, "message", message)

	if err := beeep.Notify(title, message, ""); err != nil {
		tn.logger.Warnw("Failed to send toast notification", "error", err)
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) {}

// NewNotifier returns a toast notifier when notifications are enabled and a silent one otherwise
func NewNotifier(logger *zap.SugaredLogger, enabled bool) (Notifier, error) {
	if !enabled {
		return nopNotifier{}, nil
	}

	notifier, err := NewToastNotifier(logger)
	if err != nil {
		return nil, err
	}

	return notifier, nil
}
