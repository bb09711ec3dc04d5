package config

var (
	// region AWS.

	// AWSProfile selects a named profile from the shared AWS configuration
	// files. Empty means the default credential chain.
	AWSProfile = NewKey("aws.profile",
		WithDefaultValue(""),
		WithValidString())

	// AWSRegion is the region the client talks to and the location constraint
	// used when creating buckets.
	AWSRegion = NewKey("aws.region",
		WithDefaultValue("us-east-1"),
		WithValidRegion())

	// AWSEndpoint overrides the S3 endpoint, e.g. for MinIO or R2. Setting it
	// always enables path-style addressing, whatever AWSUsePathStyle says.
	AWSEndpoint = NewKey("aws.endpoint",
		WithDefaultValue(""),
		WithValidURLOrEmpty())

	// AWSUsePathStyle forces path-style bucket addressing against AWS itself.
	AWSUsePathStyle = NewKey("aws.usePathStyle",
		WithDefaultValue(false),
		WithValidBool())

	// AWSAccessKey and AWSSecretKey configure static credentials. Both must be
	// set to take effect.
	AWSAccessKey = NewKey("aws.accessKey",
		WithDefaultValue(""),
		WithValidString())

	AWSSecretKey = NewKey("aws.secretKey",
		WithDefaultValue(""),
		WithValidString())
	// endregion.
)
