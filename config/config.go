package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

var keys = make(map[string]*Key)

// InitConfig initializes the application's configuration system. It loads
// settings from a specified file, environment variables, or search paths.
// Keys are then populated by calling Reload.
func InitConfig(cfgFile string) error {
	viper.SetEnvPrefix("WEBOTRON")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("$HOME/.webotron")
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return err
		}
	}

	return nil
}
