// Package version holds build metadata injected with -ldflags.
package version

// Set at build time:
//
//	go build -ldflags "-X github.com/sadopc/restclient/pkg/version.Version=v1.2.0 ..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the build metadata for --version output.
func String() string {
	return Version + " (" + Commit + ") built " + Date
}
