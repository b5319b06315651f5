// Package resource resolves and enumerates named resources on a classpath.
//
// A Classpath is an ordered list of roots. A root is a real directory
// (DirRoot), a zip or jar archive (ArchiveRoot), or any fs.FS such as an
// embed.FS (FSRoot). Resource names always use forward slashes and are
// relative to the root they resolve in.
//
// Resolution follows class-loader semantics: the first root that resolves a
// name serves it. A directory is listed by reading it; an archive is listed by
// filtering every entry name on the directory prefix and keeping the first
// path segment after it.
//
// ForAllEntries walks a resource directory breadth first and streams every
// resource whose name ends with a suffix to a callback:
//
//	cp, err := resource.ParseClasspath("conf:lib/defaults.jar")
//	if err != nil {
//	    return err
//	}
//	defer cp.Close()
//
//	err = cp.ForAllEntries("templates", ".conf", func(name string, r io.Reader) error {
//	    return register(name, r)
//	})
package resource
