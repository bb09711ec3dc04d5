package config

import (
	"sort"
	"sync"
)

var configReloadMutex = &sync.Mutex{}

// Reload re-reads every registered key from viper. Keys whose new value
// fails validation keep their old value and are reported with an Error.
// The result is ordered by key name.
func Reload() []*ReloadedKey {
	configReloadMutex.Lock()
	defer configReloadMutex.Unlock()

	var reloadedKeys []*ReloadedKey

	for k := range keys {
		update := keys[k].Update()
		if update != nil {
			reloadedKeys = append(reloadedKeys, update)
		}
	}

	sort.Slice(reloadedKeys, func(i, j int) bool {
		return reloadedKeys[i].Key < reloadedKeys[j].Key
	})

	return reloadedKeys
}
