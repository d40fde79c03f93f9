package persistence_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/keepsake/pkg/fsys"
	"github.com/mesh-intelligence/keepsake/pkg/notify"
	"github.com/mesh-intelligence/keepsake/pkg/persistence"
	"github.com/mesh-intelligence/keepsake/pkg/registry"
	"github.com/mesh-intelligence/keepsake/pkg/schema"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

const dataDir = "/data"

type person struct {
	notify.Notifier
	name string
	age  int
}

func (p *person) Name() string     { return p.name }
func (p *person) Age() int         { return p.age }
func (p *person) SetName(v string) { notify.Set(&p.Notifier, &p.name, v, "Name") }
func (p *person) SetAge(v int)     { notify.Set(&p.Notifier, &p.age, v, "Age") }

var personSchema = schema.New("Person", nil,
	schema.Primitive("Name", (*person).Name, (*person).SetName),
	schema.Primitive("Age", (*person).Age, (*person).SetAge),
)

// window forwards changes of its nested objects so autosave sees them.
type window struct {
	notify.Notifier
	width  int
	title  string
	recent notify.List[string]
	owner  *person
	ownSub *notify.Subscription
}

func newWindow() *window {
	w := &window{width: 640, title: "untitled"}
	w.recent.Subscribe(notify.Forward(&w.Notifier, "Recent"))
	w.SetOwner(&person{name: "nobody"})
	return w
}

func (w *window) Width() int                   { return w.width }
func (w *window) Title() string                { return w.title }
func (w *window) Recent() *notify.List[string] { return &w.recent }
func (w *window) Owner() *person               { return w.owner }
func (w *window) SetWidth(v int)               { notify.Set(&w.Notifier, &w.width, v, "Width") }
func (w *window) SetTitle(v string)            { notify.Set(&w.Notifier, &w.title, v, "Title") }

func (w *window) SetOwner(v *person) {
	if v == w.owner {
		return
	}
	w.ownSub.Unsubscribe()
	w.ownSub = nil
	w.owner = v
	if v != nil {
		w.ownSub = v.Subscribe(notify.Forward(&w.Notifier, "Owner"))
	}
	w.Notify(notify.Change{Field: "Owner", Type: notify.ChangeSet})
}

var windowSchema = schema.New("Window", newWindow,
	schema.Primitive("Width", (*window).Width, (*window).SetWidth),
	schema.Primitive("Title", (*window).Title, (*window).SetTitle),
	schema.Container("Recent", (*window).Recent),
	schema.Composite("Owner", personSchema, (*window).Owner, (*window).SetOwner),
)

// plain has no Notifier, so it cannot be autosaved.
type plain struct{ level int }

var plainSchema = schema.New("Plain", nil,
	schema.Primitive("Level",
		func(p *plain) int { return p.level },
		func(p *plain, v int) { p.level = v }),
)

type fixture struct {
	fs      *fsys.Memory
	reg     *registry.Registry
	current *window
	logs    *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		fs:      fsys.NewMemory(),
		reg:     registry.New(),
		current: newWindow(),
		logs:    &bytes.Buffer{},
	}
	require.NoError(t, registry.Add(f.reg, windowSchema, newWindow(), f.current))
	return f
}

func (f *fixture) options(autoSave, create bool) types.Options {
	return types.Options{LocalFilesDirectory: dataDir, AutoSave: autoSave, CreateSettingsFile: create}
}

func (f *fixture) manager(t *testing.T, opts types.Options, extra ...persistence.Option) *persistence.Manager[window] {
	t.Helper()
	options := append([]persistence.Option{persistence.WithLogger(loggerTo(f.logs))}, extra...)
	m, err := persistence.New(f.reg, f.fs, windowSchema, opts, options...)
	require.NoError(t, err)
	return m
}

func loggerTo(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (f *fixture) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, f.fs.MkdirAll(dataDir))
	require.NoError(t, f.fs.WriteFile(dataDir+"/"+name, []byte(content)))
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := f.fs.ReadFile(dataDir + "/" + name)
	require.NoError(t, err)
	return string(data)
}

// failingFS rejects every write after the file exists.
type failingFS struct {
	*fsys.Memory
}

var errDiskFull = errors.New("disk full")

func (failingFS) WriteFile(string, []byte) error { return errDiskFull }
