package audioswitch

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stalexteam/audioswitch/pkg/audioswitch/util"
)

// NewLogger provides a logger instance for the whole program.
// Verbose runs log everything to stderr in a human readable format; otherwise
// logs only go to logFile when one is configured, and nowhere when it isn't
func NewLogger(verbose bool, logFile string) (*zap.SugaredLogger, error) {
	var loggerConfig zap.Config

	switch {
	case verbose:
		loggerConfig = zap.NewDevelopmentConfig()
		loggerConfig.OutputPaths = []string{"stderr"}
		loggerConfig.ErrorOutputPaths = []string{"stderr"}

		// legacy Windows consoles print the escape codes verbatim
		if util.Windows() {
			loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		} else {
			loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

	case logFile != "":
		return newFileLogger(logFile)

	default:
		return zap.NewNop().Sugar(), nil
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("create zap logger: %w", err)
	}

	return logger.Sugar(), nil
}

// zap's OutputPaths treat "C:\..." as a URL with scheme "c", so the file sink is wired by hand
func newFileLogger(logFile string) (*zap.SugaredLogger, error) {
	if err := util.EnsureDirExists(filepath.Dir(logFile)); err != nil {
		return nil, fmt.Errorf("ensure log directory exists: %w", err)
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(f), zap.DebugLevel)

	return zap.New(core).Sugar(), nil
}
