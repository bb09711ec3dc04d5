package config

var (
	// region Website.

	// WebsiteIndexDocument is the suffix served for directory requests.
	WebsiteIndexDocument = NewKey("website.indexDocument",
		WithDefaultValue("index.html"),
		WithValidDocumentKey())

	// WebsiteErrorDocument is the key served for 4XX errors.
	WebsiteErrorDocument = NewKey("website.errorDocument",
		WithDefaultValue("error.html"),
		WithValidDocumentKey())
	// endregion.
)
