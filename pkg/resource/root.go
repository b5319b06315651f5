package resource

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Root is one classpath entry.
//
// List reports the immediate children of dir. ok is false when dir does not
// resolve to a directory in this root; an error matching errors.ErrUnsupported
// is treated by Classpath as "no children". Open returns an error matching
// fs.ErrNotExist when name is absent.
type Root interface {
	Name() string
	List(dir string) (children []string, ok bool, err error)
	Open(name string) (io.ReadCloser, error)
}

// DirRoot serves resources from a directory on the local filesystem.
type DirRoot struct {
	base string
}

// NewDirRoot returns a root for the directory at base.
func NewDirRoot(base string) (*DirRoot, error) {
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("resource: stat %s: %w", base, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, base)
	}
	return &DirRoot{base: base}, nil
}

func (r *DirRoot) Name() string { return r.base }

func (r *DirRoot) List(dir string) ([]string, bool, error) {
	full := r.resolve(dir)
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("resource: stat %s: %w", full, err)
	}
	if !info.IsDir() {
		return nil, false, nil
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, false, fmt.Errorf("resource: list %s: %w", full, err)
	}
	children := make([]string, 0, len(entries))
	for _, entry := range entries {
		children = append(children, entry.Name())
	}
	return children, true, nil
}

func (r *DirRoot) Open(name string) (io.ReadCloser, error) {
	full := r.resolve(name)
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return os.Open(full)
}

func (r *DirRoot) resolve(name string) string {
	return filepath.Join(r.base, filepath.FromSlash(strings.TrimSuffix(name, "/")))
}

// ArchiveRoot serves resources from a zip archive. Jar files are zip archives.
type ArchiveRoot struct {
	name   string
	reader *zip.Reader
	closer io.Closer
	files  map[string]*zip.File
}

// OpenArchive opens the zip archive at path. Close releases the file.
func OpenArchive(path string) (*ArchiveRoot, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("resource: open archive %s: %w", path, err)
	}
	root := NewArchiveRoot(path, &rc.Reader)
	root.closer = rc
	return root, nil
}

// NewArchiveRoot wraps an already open zip reader. The caller keeps ownership
// of whatever backs reader.
func NewArchiveRoot(name string, reader *zip.Reader) *ArchiveRoot {
	files := make(map[string]*zip.File, len(reader.File))
	for _, file := range reader.File {
		files[file.Name] = file
	}
	return &ArchiveRoot{name: name, reader: reader, files: files}
}

func (r *ArchiveRoot) Name() string { return r.name }

// List filters every entry name on the dir prefix. Entries with further path
// segments contribute their first segment, which marks a subdirectory.
func (r *ArchiveRoot) List(dir string) ([]string, bool, error) {
	prefix := dir
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	seen := map[string]struct{}{}
	found := false
	for _, file := range r.reader.File {
		if !strings.HasPrefix(file.Name, prefix) {
			continue
		}
		found = true
		entry := file.Name[len(prefix):]
		if idx := strings.Index(entry, "/"); idx >= 0 {
			entry = entry[:idx]
		}
		if entry == "" {
			continue
		}
		seen[entry] = struct{}{}
	}
	if !found {
		return nil, false, nil
	}
	children := make([]string, 0, len(seen))
	for entry := range seen {
		children = append(children, entry)
	}
	sort.Strings(children)
	return children, true, nil
}

func (r *ArchiveRoot) Open(name string) (io.ReadCloser, error) {
	file, ok := r.files[name]
	if !ok || file.FileInfo().IsDir() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return file.Open()
}

// Close releases the archive file when the root was created by OpenArchive.
func (r *ArchiveRoot) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// FSRoot serves resources from an fs.FS.
type FSRoot struct {
	name string
	fsys fs.FS
}

// NewFSRoot wraps fsys. name is only used for diagnostics.
func NewFSRoot(name string, fsys fs.FS) *FSRoot {
	return &FSRoot{name: name, fsys: fsys}
}

func (r *FSRoot) Name() string { return r.name }

func (r *FSRoot) List(dir string) ([]string, bool, error) {
	name := fsName(dir)
	info, err := fs.Stat(r.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("resource: stat %s in %s: %w", name, r.name, err)
	}
	if !info.IsDir() {
		return nil, false, nil
	}
	entries, err := fs.ReadDir(r.fsys, name)
	if err != nil {
		return nil, false, fmt.Errorf("resource: list %s in %s: %w", name, r.name, err)
	}
	children := make([]string, 0, len(entries))
	for _, entry := range entries {
		children = append(children, entry.Name())
	}
	return children, true, nil
}

func (r *FSRoot) Open(name string) (io.ReadCloser, error) {
	cleaned := fsName(name)
	info, err := fs.Stat(r.fsys, cleaned)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return r.fsys.Open(cleaned)
}

// fsName converts a resource name into an fs.FS name: no trailing slash and
// "." for the root.
func fsName(name string) string {
	name = strings.Trim(name, "/")
	if name == "" {
		return "."
	}
	return path.Clean(name)
}
