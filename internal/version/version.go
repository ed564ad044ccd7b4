package version

import "github.com/fatih/color"

// Version information for the lintrun CLI.
// These variables can be overridden at build time via -ldflags.

var (
	// Version is the semantic version of the CLI.
	Version = "0.3.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	nameColor    = color.New(color.FgCyan, color.Bold)
	versionColor = color.New(color.FgGreen, color.Bold)
)

// Banner returns "lintrun <version>" highlighted for terminals. Color is
// dropped automatically when fatih/color detects a non-terminal.
func Banner() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	return nameColor.Sprint("lintrun") + " " + versionColor.Sprint(v)
}
