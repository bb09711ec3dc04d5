package config

// Version is overridden at build time with
// -ldflags "-X github.com/webotron/webotron/config.Version=...".
var Version = "dev"
