package resource

import "errors"

// EnvClasspath names the environment variable read by ClasspathFromEnv.
const EnvClasspath = "PROPS_CLASSPATH"

var (
	// ErrEmptyClasspath is returned by ParseClasspath when no entry resolves.
	ErrEmptyClasspath = errors.New("resource: classpath has no usable entries")

	// ErrNotDirectory is returned by NewDirRoot for paths that are not directories.
	ErrNotDirectory = errors.New("resource: expected directory")
)
