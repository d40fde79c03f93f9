package bootstrap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/keepsake/pkg/bootstrap"
	"github.com/mesh-intelligence/keepsake/pkg/fsys"
	"github.com/mesh-intelligence/keepsake/pkg/notify"
	"github.com/mesh-intelligence/keepsake/pkg/persistence"
	"github.com/mesh-intelligence/keepsake/pkg/registry"
	"github.com/mesh-intelligence/keepsake/pkg/schema"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

type general struct {
	notify.Notifier
	language string
}

func (g *general) Language() string     { return g.language }
func (g *general) SetLanguage(v string) { notify.Set(&g.Notifier, &g.language, v, "Language") }

var generalSchema = schema.New("General", nil,
	schema.Primitive("Language", (*general).Language, (*general).SetLanguage),
)

type editor struct {
	notify.Notifier
	tabWidth int
}

func (e *editor) TabWidth() int     { return e.tabWidth }
func (e *editor) SetTabWidth(v int) { notify.Set(&e.Notifier, &e.tabWidth, v, "TabWidth") }

var editorSchema = schema.New("Editor", nil,
	schema.Primitive("TabWidth", (*editor).TabWidth, (*editor).SetTabWidth),
)

func options() types.Options {
	return types.Options{LocalFilesDirectory: "/app", AutoSave: true, CreateSettingsFile: true}
}

func TestHost_Initialize(t *testing.T) {
	mem := fsys.NewMemory()
	require.NoError(t, mem.MkdirAll("/app"))
	require.NoError(t, mem.WriteFile("/app/settings.json", []byte(`{"App":{"Editor":{"TabWidth":8}}}`)))

	h := bootstrap.New(mem, options())
	gen, ed := &general{language: "en"}, &editor{tabWidth: 4}
	require.NoError(t, bootstrap.Register(h, generalSchema, &general{language: "en"}, gen))
	require.NoError(t, bootstrap.Register(h, editorSchema, &editor{tabWidth: 4}, ed,
		persistence.WithMetadata(types.Metadata{Section: "App:Editor"})))

	assert.Equal(t, []string{"General", "Editor"}, h.Registry().Names())
	require.NoError(t, h.Initialize())
	assert.Equal(t, 8, ed.TabWidth())

	cur, err := registry.Current[editor](h.Registry())
	require.NoError(t, err)
	assert.Same(t, ed, cur)

	m, err := bootstrap.Manager[general](h)
	require.NoError(t, err)
	assert.True(t, m.Loaded())

	gen.SetLanguage("fr")
	data, err := mem.ReadFile("/app/settings.json")
	require.NoError(t, err)
	assert.Equal(t, "fr", gjson.GetBytes(data, "General.Language").String())
	assert.Equal(t, int64(8), gjson.GetBytes(data, "App.Editor.TabWidth").Int())

	require.NoError(t, h.Close())
	gen.SetLanguage("de")
	data, err = mem.ReadFile("/app/settings.json")
	require.NoError(t, err)
	assert.Equal(t, "fr", gjson.GetBytes(data, "General.Language").String())
}

func TestHost_InitializeOnce(t *testing.T) {
	h := bootstrap.New(fsys.NewMemory(), options())
	require.NoError(t, bootstrap.Register(h, generalSchema, &general{}, &general{}))
	require.NoError(t, h.Initialize())

	assert.ErrorIs(t, h.Initialize(), types.ErrAlreadyInitialized)
	err := bootstrap.Register(h, editorSchema, &editor{}, &editor{})
	assert.ErrorIs(t, err, types.ErrAlreadyInitialized)
}

func TestHost_Errors(t *testing.T) {
	h := bootstrap.New(fsys.NewMemory(), options())
	require.NoError(t, bootstrap.Register(h, generalSchema, &general{}, &general{}))

	err := bootstrap.Register(h, generalSchema, &general{}, &general{})
	assert.ErrorIs(t, err, types.ErrDuplicateRegistration)

	_, err = bootstrap.Manager[general](h)
	assert.ErrorIs(t, err, types.ErrNotRegistered, "managers exist only after Initialize")
}

func TestHost_InitializeStopsAtFirstFailure(t *testing.T) {
	opts := options()
	opts.CreateSettingsFile = false
	h := bootstrap.New(fsys.NewMemory(), opts)
	require.NoError(t, bootstrap.Register(h, generalSchema, &general{}, &general{}))
	require.NoError(t, bootstrap.Register(h, editorSchema, &editor{}, &editor{}))

	err := h.Initialize()
	assert.ErrorIs(t, err, types.ErrFileMissing)
	assert.Contains(t, err.Error(), "General")

	_, err = bootstrap.Manager[editor](h)
	assert.ErrorIs(t, err, types.ErrNotRegistered)
}
