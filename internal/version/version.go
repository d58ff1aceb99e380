// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// UserAgent identifies this build to remote services.
func UserAgent() string {
	return "ctsrange/" + Version + " (" + Commit + ")"
}
