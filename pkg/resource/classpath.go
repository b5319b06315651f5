package resource

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Classpath is an ordered list of roots. The zero value is an empty classpath
// that resolves nothing.
type Classpath struct {
	roots []Root
}

// EntryFunc receives one matching resource. The reader is closed after the
// callback returns.
type EntryFunc func(name string, r io.Reader) error

// NewClasspath builds a classpath from roots, skipping nil entries.
func NewClasspath(roots ...Root) *Classpath {
	cp := &Classpath{}
	for _, root := range roots {
		if root != nil {
			cp.roots = append(cp.roots, root)
		}
	}
	return cp
}

// ParseClasspath builds a classpath from a list of paths separated by
// os.PathListSeparator. Entries ending in .zip or .jar are opened as archives,
// directories become DirRoots and missing entries are skipped.
func ParseClasspath(spec string) (*Classpath, error) {
	cp := &Classpath{}
	for _, entry := range filepath.SplitList(spec) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		root, err := openEntry(entry)
		if err != nil {
			_ = cp.Close()
			return nil, err
		}
		if root != nil {
			cp.roots = append(cp.roots, root)
		}
	}
	if len(cp.roots) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyClasspath, spec)
	}
	return cp, nil
}

// ClasspathFromEnv parses the PROPS_CLASSPATH environment variable, defaulting
// to the working directory.
func ClasspathFromEnv() (*Classpath, error) {
	spec := strings.TrimSpace(os.Getenv(EnvClasspath))
	if spec == "" {
		spec = "."
	}
	return ParseClasspath(spec)
}

func openEntry(entry string) (Root, error) {
	info, err := os.Stat(entry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("resource: stat classpath entry %s: %w", entry, err)
	}
	if info.IsDir() {
		return &DirRoot{base: entry}, nil
	}
	switch strings.ToLower(filepath.Ext(entry)) {
	case ".zip", ".jar":
		return OpenArchive(entry)
	default:
		return nil, nil
	}
}

// Roots returns a copy of the classpath roots in resolution order.
func (c *Classpath) Roots() []Root {
	if c == nil {
		return nil
	}
	return append([]Root(nil), c.roots...)
}

// Append adds roots to the end of the classpath.
func (c *Classpath) Append(roots ...Root) {
	for _, root := range roots {
		if root != nil {
			c.roots = append(c.roots, root)
		}
	}
}

// Open returns the named resource from the first root that has it. The error
// matches fs.ErrNotExist when no root does.
func (c *Classpath) Open(name string) (io.ReadCloser, error) {
	if c != nil {
		for _, root := range c.roots {
			rc, err := root.Open(name)
			if err == nil {
				return rc, nil
			}
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("resource: open %s in %s: %w", name, root.Name(), err)
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Listing returns the immediate children of dir in the first root that
// resolves it. A nil slice means dir did not resolve or its root cannot list.
func (c *Classpath) Listing(dir string) ([]string, error) {
	if c == nil {
		return nil, nil
	}
	for _, root := range c.roots {
		children, ok, err := root.List(dir)
		if err != nil {
			if errors.Is(err, errors.ErrUnsupported) {
				return nil, nil
			}
			return nil, err
		}
		if ok {
			return children, nil
		}
	}
	return nil, nil
}

// ForAllEntries walks the resource directory root breadth first and calls fn
// for every resource whose name ends with suffix. Names not ending with
// suffix are treated as possible directories; names ending with suffix are
// never listed. Resources that cannot be opened are skipped. An error from fn
// stops the walk and is returned.
func (c *Classpath) ForAllEntries(root, suffix string, fn EntryFunc) error {
	if fn == nil {
		return fmt.Errorf("resource: entry callback is nil")
	}
	if root != "" && !strings.HasSuffix(root, "/") {
		root += "/"
	}

	queue, err := c.children(root)
	if err != nil {
		return err
	}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		if !strings.HasSuffix(next, suffix) {
			dir := next
			if !strings.HasSuffix(dir, "/") {
				dir += "/"
			}
			found, err := c.children(dir)
			if err != nil {
				return err
			}
			queue = append(queue, found...)
			continue
		}

		if err := c.visit(next, fn); err != nil {
			return err
		}
	}
	return nil
}

func (c *Classpath) children(dir string) ([]string, error) {
	names, err := c.Listing(dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, dir+name)
	}
	return out, nil
}

func (c *Classpath) visit(name string, fn EntryFunc) error {
	rc, err := c.Open(name)
	if err != nil {
		return nil
	}
	defer rc.Close()
	return fn(name, rc)
}

// Close releases any archives held by the classpath.
func (c *Classpath) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for _, root := range c.roots {
		if closer, ok := root.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
