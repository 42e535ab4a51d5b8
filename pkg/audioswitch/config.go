package audioswitch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/stalexteam/audioswitch/pkg/audioswitch/util"
)

// CanonicalConfig provides access to the optional user configuration file
// and its environment overrides
type CanonicalConfig struct {
	// Roles the setter targets when switching, in order, without duplicates
	Roles []Role

	Notify  bool
	LogFile string

	logger     *zap.SugaredLogger
	userConfig *viper.Viper
}

const (
	userConfigName = "audioswitch"
	configType     = "yaml"
	envPrefix      = "AUDIOSWITCH"

	configKeyRoles   = "roles"
	configKeyNotify  = "notify"
	configKeyLogFile = "log_file"
)

var defaultRoles = []string{RoleConsole.String()}

// NewConfig sets up a viper instance for the user config. When configPath is
// empty, audioswitch.yaml is looked up next to the executable and in the working directory
func NewConfig(logger *zap.SugaredLogger, configPath string) (*CanonicalConfig, error) {
	logger = logger.Named("config")

	cc := &CanonicalConfig{
		logger: logger,
	}

	userConfig := viper.New()
	userConfig.SetConfigType(configType)

	if configPath != "" {
		userConfig.SetConfigFile(configPath)
	} else {
		userConfig.SetConfigName(userConfigName)

		if exeDir, err := util.ExecutableDir(); err == nil {
			userConfig.AddConfigPath(exeDir)
		} else {
			logger.Debugw("Failed to resolve executable directory", "error", err)
		}

		userConfig.AddConfigPath(".")
	}

	userConfig.SetEnvPrefix(envPrefix)
	userConfig.AutomaticEnv()

	userConfig.SetDefault(configKeyRoles, defaultRoles)
	userConfig.SetDefault(configKeyNotify, false)
	userConfig.SetDefault(configKeyLogFile, "")

	cc.userConfig = userConfig

	logger.Debug("Created config instance")

	return cc, nil
}

// Load reads the config file if there is one and populates the config fields
func (cc *CanonicalConfig) Load() error {
	if err := cc.userConfig.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError

		if !errors.As(err, &notFound) {
			cc.logger.Warnw("Viper failed to read user config", "error", err)
			return fmt.Errorf("read user config: %w", err)
		}

		cc.logger.Debugw("No config file found, using defaults", "reminder", "this is fine")
	} else {
		cc.logger.Debugw("Read config file", "path", cc.userConfig.ConfigFileUsed())
	}

	if err := cc.populateFromViper(); err != nil {
		cc.logger.Warnw("Failed to populate config fields", "error", err)
		return fmt.Errorf("populate config fields: %w", err)
	}

	cc.logger.Debugw("Config values",
		"roles", cc.Roles,
		"notify", cc.Notify,
		"logFile", cc.LogFile,
	)

	return nil
}

func (cc *CanonicalConfig) populateFromViper() error {
	roleNames := cc.userConfig.GetStringSlice(configKeyRoles)

	// env overrides arrive as a single comma separated string
	if len(roleNames) == 1 && strings.Contains(roleNames[0], ",") {
		roleNames = strings.Split(roleNames[0], ",")
	}

	roleNames = funk.UniqString(funk.FilterString(funk.Map(roleNames, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	}).([]string), func(s string) bool {
		return s != ""
	}))

	if len(roleNames) == 0 {
		roleNames = defaultRoles
	}

	roles := make([]Role, 0, len(roleNames))
	for _, roleName := range roleNames {
		role, err := ParseRole(roleName)
		if err != nil {
			return fmt.Errorf("parse %s: %w", configKeyRoles, err)
		}

		roles = append(roles, role)
	}

	cc.Roles = roles
	cc.Notify = cc.userConfig.GetBool(configKeyNotify)
	cc.LogFile = cc.userConfig.GetString(configKeyLogFile)

	return nil
}
