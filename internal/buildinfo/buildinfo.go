// Package buildinfo carries build-time metadata injected via ldflags.
package buildinfo

import "fmt"

// Set at build time with -ldflags "-X github.com/camsift/camsift/internal/buildinfo.Version=..."
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// Info is a snapshot of the build metadata.
type Info struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
}

// Current returns the metadata of this binary.
func Current() Info {
	return Info{Version: Version, BuildDate: BuildDate}
}

// String formats the metadata for the version command.
func (i Info) String() string {
	return fmt.Sprintf("camsift %s (built %s)", i.Version, i.BuildDate)
}
