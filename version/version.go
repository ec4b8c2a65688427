// Package version exposes build information injected at link time.
package version

//nolint:gochecknoglobals // set by -ldflags "-X"
var (
	name    = "lineprof"
	version = "dev"
	commit  = "unknown"
)

// Name returns the program name.
func Name() string {
	return name
}

// Version returns the release version, "dev" for local builds.
func Version() string {
	return version
}

// Commit returns the VCS revision the binary was built from.
func Commit() string {
	return commit
}
