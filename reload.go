package webotron

import (
	"github.com/rs/zerolog/log"
	"github.com/webotron/webotron/config"
)

// Reload refreshes every configuration key from viper, logging keys whose
// new value was rejected.
func Reload() {
	for _, k := range config.Reload() {
		if k.Error != nil {
			log.Error().
				Err(k.Error).
				Str("key", k.Key).
				Interface("oldValue", k.OldValue).
				Interface("newValue", k.NewValue).
				Msg("Failed to load configuration key, ignoring")
			continue
		}

		if k.OldValue != nil {
			log.Debug().
				Str("key", k.Key).
				Interface("oldValue", k.OldValue).
				Interface("newValue", k.NewValue).
				Msg("Configuration key changed")
		}
	}
}
