package version

// Set at build time with -ldflags "-X focuslog/version.Version=... -X focuslog/version.Date=..."
var (
	Version = "dev"
	Date    = "unknown"
)
