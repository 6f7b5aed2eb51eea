// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/matzehuels/bimtower/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/bimtower/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/bimtower/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Exported IFC files record the version in their header, so a file can be
// traced back to the build that wrote it.
package buildinfo

import "fmt"

// Product is the name written into exchange file headers.
const Product = "bimtower"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// OriginatingSystem returns the originating-system tag for exchange file
// headers, e.g. "bimtower v1.2.3".
func OriginatingSystem() string {
	return Product + " " + Version
}

// UserAgent returns the User-Agent / server header value.
func UserAgent() string {
	return Product + "/" + Version
}
