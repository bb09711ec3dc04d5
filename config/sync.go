package config

import "time"

var (
	// region Sync.

	// SyncMaxConcurrentUploads is the maximum number of uploads in flight
	// during a sync. The default of 1 uploads files one at a time.
	SyncMaxConcurrentUploads = NewKey("sync.maxConcurrentUploads",
		WithDefaultValue(1),
		WithValidPositiveInt())

	// SyncFailFast stops a sync at the first failed upload. When disabled every
	// file is attempted and all failures are reported together.
	SyncFailFast = NewKey("sync.failFast",
		WithDefaultValue(true),
		WithValidBool())

	// SyncDryRun logs the uploads a sync would perform without performing them.
	SyncDryRun = NewKey("sync.dryRun",
		WithDefaultValue(false),
		WithValidBool())

	// SyncKeyPrefix is prepended to every uploaded key.
	SyncKeyPrefix = NewKey("sync.keyPrefix",
		WithDefaultValue(""),
		WithValidString())

	// SyncRegionCacheExpirationTime is how long a bucket's region is remembered.
	SyncRegionCacheExpirationTime = NewKey("sync.regionCache.expirationTime",
		WithDefaultValue(10*time.Minute),
		WithValidDuration())

	// SyncRegionCacheCapacity is the maximum number of cached bucket regions.
	SyncRegionCacheCapacity = NewKey("sync.regionCache.capacity",
		WithDefaultValue(100),
		WithValidPositiveInt())
	// endregion.
)
