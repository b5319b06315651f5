package props

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-props/internal/propfile"
	"github.com/goliatone/go-props/pkg/activity"
	"github.com/goliatone/go-props/pkg/resource"
)

// Table is a concurrent map of global properties plus the set of property
// files already merged into it. The zero value is not usable; call New.
type Table struct {
	mu     sync.RWMutex
	values map[string]string

	loadedMu sync.Mutex
	loaded   map[string]struct{}

	clockMu sync.RWMutex
	clock   TimeSource

	cpMu sync.Mutex
	cp   *resource.Classpath

	evalMu    sync.Mutex
	evaluator Evaluator

	cfg     tableConfig
	emitter *activity.Emitter
}

// New returns an empty table.
func New(opts ...Option) *Table {
	cfg := applyOptions(opts)
	t := &Table{
		values:    map[string]string{},
		loaded:    map[string]struct{}{},
		clock:     cfg.clock,
		cp:        cfg.classpath,
		evaluator: cfg.evaluator,
		cfg:       cfg,
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: len(cfg.activityHooks) > 0,
			Channel: cfg.channel,
		}),
	}
	return t
}

// AddPropertyFile merges the property resource at path into the table. Each
// distinct path is processed at most once: later calls for a claimed path
// return nil immediately. A resource that does not exist is not an error and
// stays claimed. Open and parse failures release the claim, so the load may
// be retried, and match ErrResourceLoad.
func (t *Table) AddPropertyFile(path string) error {
	if !t.claim(path) {
		return nil
	}

	format := propfile.FormatFor(path)
	start := time.Now()
	entries, found, err := t.readPropertyFile(path)
	event := LoadEvent{
		Path:     path,
		Format:   format.String(),
		Entries:  len(entries),
		Found:    found,
		Duration: time.Since(start),
	}
	if err != nil {
		t.release(path)
		event.Err = fmt.Errorf("%w: %s: %w", ErrResourceLoad, path, err)
		t.cfg.loadLogger.LogLoad(event)
		return event.Err
	}

	if len(entries) > 0 {
		t.mu.Lock()
		maps.Copy(t.values, entries)
		t.mu.Unlock()
	}
	t.cfg.loadLogger.LogLoad(event)
	_ = t.emitter.Emit(context.Background(), activity.BuildPropertyFileLoadedEvent(activity.PropertyEventInput{
		Path:    path,
		Format:  event.Format,
		Entries: event.Entries,
		Found:   found,
	}))
	return nil
}

// AddPropertyFiles loads each path in order and joins the failures.
func (t *Table) AddPropertyFiles(paths ...string) error {
	var errs []error
	for _, path := range paths {
		if err := t.AddPropertyFile(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *Table) claim(path string) bool {
	t.loadedMu.Lock()
	defer t.loadedMu.Unlock()
	if _, ok := t.loaded[path]; ok {
		return false
	}
	t.loaded[path] = struct{}{}
	return true
}

func (t *Table) release(path string) {
	t.loadedMu.Lock()
	delete(t.loaded, path)
	t.loadedMu.Unlock()
}

func (t *Table) readPropertyFile(path string) (map[string]string, bool, error) {
	cp, err := t.classpath()
	if errors.Is(err, resource.ErrEmptyClasspath) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rc, err := cp.Open(strings.TrimPrefix(path, "/"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer rc.Close()

	entries, err := propfile.ParseFile(path, rc)
	if err != nil {
		return nil, true, err
	}
	return entries, true, nil
}

// classpath resolves PROPS_CLASSPATH on first use. Failures are not kept,
// so entries created later are picked up by the next load.
func (t *Table) classpath() (*resource.Classpath, error) {
	t.cpMu.Lock()
	defer t.cpMu.Unlock()
	if t.cp != nil {
		return t.cp, nil
	}
	cp, err := resource.ClasspathFromEnv()
	if err != nil {
		return nil, err
	}
	t.cp = cp
	return cp, nil
}

// Classpath returns the classpath used to resolve property files.
func (t *Table) Classpath() (*resource.Classpath, error) {
	return t.classpath()
}

// LoadedFiles returns the claimed paths in sorted order.
func (t *Table) LoadedFiles() []string {
	t.loadedMu.Lock()
	paths := make([]string, 0, len(t.loaded))
	for path := range t.loaded {
		paths = append(paths, path)
	}
	t.loadedMu.Unlock()
	sort.Strings(paths)
	return paths
}

// GetGlobalProperty returns the value for key and whether it is present.
func (t *Table) GetGlobalProperty(key string) (string, bool) {
	t.mu.RLock()
	value, ok := t.values[key]
	t.mu.RUnlock()
	return value, ok
}

// GetGlobalPropertyDefault returns the value for key or def when absent.
func (t *Table) GetGlobalPropertyDefault(key, def string) string {
	if value, ok := t.GetGlobalProperty(key); ok {
		return value
	}
	return def
}

// SetGlobalProperty overrides key for the lifetime of the table.
func (t *Table) SetGlobalProperty(key, value string) {
	t.mu.Lock()
	t.values[key] = value
	t.mu.Unlock()
}

// Values returns a copy of every property.
func (t *Table) Values() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.values)
}

// Len reports the number of properties.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}
