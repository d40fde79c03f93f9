package schema_test

import (
	"github.com/mesh-intelligence/keepsake/pkg/notify"
	"github.com/mesh-intelligence/keepsake/pkg/schema"
)

type position struct {
	notify.Notifier
	x, y int
}

func (p *position) X() int     { return p.x }
func (p *position) Y() int     { return p.y }
func (p *position) SetX(v int) { notify.Set(&p.Notifier, &p.x, v, "X") }
func (p *position) SetY(v int) { notify.Set(&p.Notifier, &p.y, v, "Y") }

var positionSchema = schema.New("Position", nil,
	schema.Primitive("X", (*position).X, (*position).SetX),
	schema.Primitive("Y", (*position).Y, (*position).SetY),
)

type window struct {
	notify.Notifier
	width    int
	title    string
	maxed    bool
	recent   notify.List[string]
	position *position
}

func newWindow() *window {
	w := &window{width: 640, title: "untitled", position: &position{}}
	w.recent.Subscribe(notify.Forward(&w.Notifier, "Recent"))
	return w
}

func (w *window) Width() int                   { return w.width }
func (w *window) Title() string                { return w.title }
func (w *window) Maximized() bool              { return w.maxed }
func (w *window) Recent() *notify.List[string] { return &w.recent }
func (w *window) Position() *position          { return w.position }

func (w *window) SetWidth(v int)      { notify.Set(&w.Notifier, &w.width, v, "Width") }
func (w *window) SetTitle(v string)   { notify.Set(&w.Notifier, &w.title, v, "Title") }
func (w *window) SetMaximized(v bool) { notify.Set(&w.Notifier, &w.maxed, v, "Maximized") }
func (w *window) SetPosition(v *position) {
	notify.Set(&w.Notifier, &w.position, v, "Position")
}

var windowSchema = schema.New("Window", newWindow,
	schema.Primitive("Width", (*window).Width, (*window).SetWidth),
	schema.Primitive("Title", (*window).Title, (*window).SetTitle),
	schema.Primitive("Maximized", (*window).Maximized, (*window).SetMaximized),
	schema.Container("Recent", (*window).Recent),
	schema.Composite("Position", positionSchema, (*window).Position, (*window).SetPosition),
)

func recorder(o notify.Observable) *[]notify.Change {
	var got []notify.Change
	o.Subscribe(func(c notify.Change) { got = append(got, c) })
	return &got
}

func fields(changes []notify.Change) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.Field)
	}
	return out
}
