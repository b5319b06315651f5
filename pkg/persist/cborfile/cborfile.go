// Package cborfile is a persist.Provider that keeps its properties in a
// single CBOR file.
//
// The file holds one map of text keys to text values in Core Deterministic
// Encoding, so identical contents always produce identical bytes. Every Set
// and Remove rewrites the file through a temporary file and a rename.
package cborfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/goliatone/go-props/pkg/persist"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cborfile: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("cborfile: CBOR decoder initialization failed: " + err.Error())
	}
}

// Provider is safe for concurrent use within one process. It does not
// coordinate with other processes writing the same file.
type Provider struct {
	path string

	mu     sync.RWMutex
	values map[string]string
}

var _ persist.Provider = (*Provider)(nil)

// Open loads path. A missing file yields an empty provider; the file is
// created by the first write.
func Open(path string) (*Provider, error) {
	if path == "" {
		return nil, errors.New("cborfile: path must not be empty")
	}
	values, err := load(path)
	if err != nil {
		return nil, err
	}
	return &Provider{path: path, values: values}, nil
}

func load(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cborfile: read %s: %w", path, err)
	}
	values := map[string]string{}
	if len(raw) == 0 {
		return values, nil
	}
	if err := decMode.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("cborfile: decode %s: %w", path, err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

// Name labels the provider in traces and events.
func (p *Provider) Name() string { return "cborfile" }

// Path returns the backing file.
func (p *Provider) Path() string { return p.path }

// RetrieveAll returns the cached entries sorted by name.
func (p *Provider) RetrieveAll(_ context.Context) ([]persist.Property, error) {
	p.mu.RLock()
	out := make([]persist.Property, 0, len(p.values))
	for name, value := range p.values {
		out = append(out, persist.Property{Name: name, Value: value})
	}
	p.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get reads key from the cached view.
func (p *Provider) Get(_ context.Context, key string) (persist.Property, bool, error) {
	p.mu.RLock()
	value, ok := p.values[key]
	p.mu.RUnlock()
	if !ok {
		return persist.Property{}, false, nil
	}
	return persist.Property{Name: key, Value: value}, true, nil
}

// Set writes the file before the new value becomes visible. A failed write
// leaves the provider unchanged.
func (p *Provider) Set(ctx context.Context, key, value string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	prev, existed := p.values[key]
	next := maps.Clone(p.values)
	next[key] = value
	if err := p.write(next); err != nil {
		return "", false, err
	}
	p.values = next
	return prev, existed, nil
}

// Remove deletes key and rewrites the file. A failed write leaves the
// provider unchanged.
func (p *Provider) Remove(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	prev, existed := p.values[key]
	if !existed {
		return "", false, nil
	}
	next := maps.Clone(p.values)
	delete(next, key)
	if err := p.write(next); err != nil {
		return "", false, err
	}
	p.values = next
	return prev, true, nil
}

// Reload replaces the in-memory view with the current file contents.
func (p *Provider) Reload() error {
	values, err := load(p.path)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.values = values
	p.mu.Unlock()
	return nil
}

func (p *Provider) write(values map[string]string) error {
	out, err := encMode.Marshal(values)
	if err != nil {
		return fmt.Errorf("cborfile: encode: %w", err)
	}
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cborfile: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".props-*.cbor")
	if err != nil {
		return fmt.Errorf("cborfile: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("cborfile: %w", err)
	}
	if _, err := tmp.Write(out); err != nil {
		return fmt.Errorf("cborfile: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cborfile: %w", err)
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		return fmt.Errorf("cborfile: %w", err)
	}
	return nil
}
