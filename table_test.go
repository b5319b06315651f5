package props

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-props/pkg/activity"
	"github.com/goliatone/go-props/pkg/resource"
)

func memClasspath(files map[string]string) *resource.Classpath {
	fsys := fstest.MapFS{}
	for name, body := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(body)}
	}
	return resource.NewClasspath(resource.NewFSRoot("mem", fsys))
}

// countingRoot counts opens and can fail the first n of them.
type countingRoot struct {
	resource.Root
	opens    atomic.Int32
	failures atomic.Int32
}

func (r *countingRoot) Open(name string) (io.ReadCloser, error) {
	r.opens.Add(1)
	if r.failures.Load() > 0 {
		r.failures.Add(-1)
		return nil, errors.New("device busy")
	}
	return r.Root.Open(name)
}

func TestAddPropertyFileMergesLastLoadedWins(t *testing.T) {
	table := New(WithClasspath(memClasspath(map[string]string{
		"base.properties":     "a=1\nb=2\n",
		"override.properties": "b=3\nc=4\n",
	})))

	if err := table.AddPropertyFiles("base.properties", "override.properties"); err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]string{"a": "1", "b": "3", "c": "4"}
	if got := table.Values(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := table.LoadedFiles(); !reflect.DeepEqual(got, []string{"base.properties", "override.properties"}) {
		t.Fatalf("unexpected loaded files %v", got)
	}
}

func TestAddPropertyFileLoadsOnce(t *testing.T) {
	root := &countingRoot{Root: resource.NewFSRoot("mem", fstest.MapFS{
		"app.properties": {Data: []byte("k=file\n")},
	})}
	table := New(WithClasspath(resource.NewClasspath(root)))

	if err := table.AddPropertyFile("app.properties"); err != nil {
		t.Fatalf("load: %v", err)
	}
	table.SetGlobalProperty("k", "override")
	if err := table.AddPropertyFile("app.properties"); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if got, _ := table.GetGlobalProperty("k"); got != "override" {
		t.Fatalf("second load should not reapply the file, got %q", got)
	}
	if root.opens.Load() != 1 {
		t.Fatalf("expected one open, got %d", root.opens.Load())
	}
}

func TestAddPropertyFileConcurrentCallersLoadOnce(t *testing.T) {
	root := &countingRoot{Root: resource.NewFSRoot("mem", fstest.MapFS{
		"app.properties": {Data: []byte("k=v\n")},
	})}
	table := New(WithClasspath(resource.NewClasspath(root)))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := table.AddPropertyFile("app.properties"); err != nil {
				t.Errorf("load: %v", err)
			}
			_, _ = table.GetGlobalProperty("k")
		}()
	}
	wg.Wait()
	if root.opens.Load() != 1 {
		t.Fatalf("expected a single open, got %d", root.opens.Load())
	}
}

func TestAddPropertyFileMissingIsSoftAndClaimed(t *testing.T) {
	var events []LoadEvent
	table := New(
		WithClasspath(memClasspath(nil)),
		WithLoadLogger(LoadLoggerFunc(func(e LoadEvent) { events = append(events, e) })),
	)

	if err := table.AddPropertyFile("missing.properties"); err != nil {
		t.Fatalf("missing resource should not fail: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("expected no entries")
	}
	if got := table.LoadedFiles(); len(got) != 1 || got[0] != "missing.properties" {
		t.Fatalf("missing path should stay claimed, got %v", got)
	}
	if err := table.AddPropertyFile("missing.properties"); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(events) != 1 || events[0].Found {
		t.Fatalf("expected a single not-found event, got %+v", events)
	}
}

func TestAddPropertyFileFailureReleasesClaim(t *testing.T) {
	root := &countingRoot{Root: resource.NewFSRoot("mem", fstest.MapFS{
		"app.properties": {Data: []byte("k=v\n")},
	})}
	root.failures.Store(1)
	table := New(WithClasspath(resource.NewClasspath(root)))

	err := table.AddPropertyFile("app.properties")
	if !errors.Is(err, ErrResourceLoad) {
		t.Fatalf("expected ErrResourceLoad, got %v", err)
	}
	if len(table.LoadedFiles()) != 0 {
		t.Fatalf("failed path should be released, got %v", table.LoadedFiles())
	}

	if err := table.AddPropertyFile("app.properties"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got, ok := table.GetGlobalProperty("k"); !ok || got != "v" {
		t.Fatalf("expected retry to load, got %q %v", got, ok)
	}
}

func TestAddPropertyFileParseFailure(t *testing.T) {
	table := New(WithClasspath(memClasspath(map[string]string{
		"bad.properties": "ok=1\nbroken=\\uZZZZ\n",
	})))
	err := table.AddPropertyFile("bad.properties")
	if !errors.Is(err, ErrResourceLoad) || !strings.Contains(err.Error(), "bad.properties") {
		t.Fatalf("expected load error naming the file, got %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("failed parse should not merge partial entries")
	}
}

func TestAddPropertyFileStructuredFormats(t *testing.T) {
	table := New(WithClasspath(memClasspath(map[string]string{
		"conf/app.yaml":     "server:\n  port: 8080\n",
		"conf/flags.jsonc":  "{\"feature\": {\"enabled\": true}, // on\n}",
		"conf/legacy.props": "legacy: yes",
	})))
	if err := table.AddPropertyFiles("/conf/app.yaml", "conf/flags.jsonc", "conf/legacy.props"); err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]string{"server.port": "8080", "feature.enabled": "true", "legacy": "yes"}
	if got := table.Values(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAddPropertyFileEmitsActivity(t *testing.T) {
	capture := &activity.CaptureHook{}
	table := New(
		WithClasspath(memClasspath(map[string]string{"app.properties": "a=1\nb=2\n"})),
		WithActivityHooks(activity.Hooks{capture}),
	)
	if err := table.AddPropertyFile("app.properties"); err != nil {
		t.Fatalf("load: %v", err)
	}
	events := capture.Events()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].Verb != activity.VerbPropertyFileLoaded || events[0].Metadata["entries"] != 2 || events[0].Channel != activity.DefaultChannel {
		t.Fatalf("unexpected event %+v", events[0])
	}
}

func TestAddPropertyFileUsesEnvClasspath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(resource.EnvClasspath, dir)
	writeFile(t, dir, "env.properties", "from=env\n")

	table := New()
	if err := table.AddPropertyFile("env.properties"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := table.GetGlobalPropertyDefault("from", ""); got != "env" {
		t.Fatalf("expected env classpath to resolve, got %q", got)
	}
}

func TestAddPropertyFileUnresolvableEnvClasspathIsSoft(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "later")
	t.Setenv(resource.EnvClasspath, dir)

	table := New()
	if err := table.AddPropertyFile("app.properties"); err != nil {
		t.Fatalf("expected soft miss, got %v", err)
	}
	if got := table.LoadedFiles(); !reflect.DeepEqual(got, []string{"app.properties"}) {
		t.Fatalf("expected missing path to stay claimed, got %v", got)
	}

	writeFile(t, dir, "app2.properties", "late=yes\n")
	if err := table.AddPropertyFile("app2.properties"); err != nil {
		t.Fatalf("load after classpath appeared: %v", err)
	}
	if got := table.GetGlobalPropertyDefault("late", ""); got != "yes" {
		t.Fatalf("expected the new classpath entry to resolve, got %q", got)
	}
}

func TestGlobalPropertyAccessors(t *testing.T) {
	table := New(WithClasspath(memClasspath(nil)))
	if _, ok := table.GetGlobalProperty("k"); ok {
		t.Fatalf("expected absent key")
	}
	if got := table.GetGlobalPropertyDefault("k", "def"); got != "def" {
		t.Fatalf("expected default, got %q", got)
	}
	table.SetGlobalProperty("k", "")
	if got := table.GetGlobalPropertyDefault("k", "def"); got != "" {
		t.Fatalf("present empty value should win over default, got %q", got)
	}

	values := table.Values()
	values["k"] = "mutated"
	if got, _ := table.GetGlobalProperty("k"); got != "" {
		t.Fatalf("Values should return a copy")
	}
}

func TestResetReplacesDefaultTable(t *testing.T) {
	t.Cleanup(func() { Reset() })

	first := Reset(WithClasspath(memClasspath(map[string]string{"app.properties": "k=v"})))
	if Default() != first {
		t.Fatalf("Reset should install the returned table")
	}
	if err := AddPropertyFile("app.properties"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, ok := GetGlobalProperty("k"); !ok || got != "v" {
		t.Fatalf("expected package level read, got %q %v", got, ok)
	}

	Reset()
	if _, ok := GetGlobalProperty("k"); ok {
		t.Fatalf("expected fresh default table")
	}
	if len(LoadedFiles()) != 0 {
		t.Fatalf("expected no loaded files after reset")
	}
	SetGlobalProperty("x", "1")
	if Values()["x"] != "1" {
		t.Fatalf("expected package level write")
	}
}

func ExampleTable_AddPropertyFile() {
	table := New(WithClasspath(resource.NewClasspath(resource.NewFSRoot("conf", fstest.MapFS{
		"app.properties": {Data: []byte("app.limit = 25\n")},
	}))))
	if err := table.AddPropertyFile("app.properties"); err != nil {
		fmt.Println(err)
		return
	}
	limit, _ := table.GetLongGlobalPropertyDefault("app.limit", 50)
	fmt.Println(limit)
	// Output: 25
}
