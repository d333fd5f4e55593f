package uischema

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jakubkanna/labguy-manager/internal/dto"
	"github.com/jakubkanna/labguy-manager/internal/entity"
	"golang.org/x/exp/slices"
)

// FieldProps is what the form renderer hands a custom field: the current value and
// the callback taking the new one.
type FieldProps struct {
	FormData any
	OnChange func(value any)
}

// Control describes a custom control. The func fields are for the page driving the
// control and are not serialized.
type Control struct {
	Widget   string   `json:"widget"`
	Label    string   `json:"label,omitempty"`
	FreeSolo bool     `json:"freeSolo,omitempty"`
	Multiple bool     `json:"multiple,omitempty"`
	NoEdit   bool     `json:"noEdit,omitempty"`
	Variant  string   `json:"variant,omitempty"`
	Value    any      `json:"value"`
	Options  []Option `json:"options,omitempty"`

	// Select receives the selection made in an autocomplete.
	Select func(selected []Selection) error `json:"-"`
	// Upload replaces media through a re-upload.
	Upload func(ctx context.Context, kind entity.MediaKind, files []dto.UploadFile) error `json:"-"`
}

// Option is an autocomplete option.
type Option struct {
	ID    int    `json:"id,omitempty"`
	Title string `json:"title"`
}

// Selection is one autocomplete value: an existing option or free text.
type Selection struct {
	Option *Option
	Text   string
}

func (s *Selection) UnmarshalJSON(b []byte) error {
	var text string
	if err := json.Unmarshal(b, &text); err == nil {
		s.Text = text
		return nil
	}
	var o Option
	if err := json.Unmarshal(b, &o); err != nil {
		return fmt.Errorf("selection must be a string or an option: %w", err)
	}
	s.Option = &o
	return nil
}

func (s Selection) MarshalJSON() ([]byte, error) {
	if s.Option != nil {
		return json.Marshal(s.Option)
	}
	return json.Marshal(s.Text)
}

// Renderer renders the custom control of one field.
type Renderer interface {
	Render(ctx context.Context, props FieldProps) (Control, error)
}

type RendererFunc func(ctx context.Context, props FieldProps) (Control, error)

func (f RendererFunc) Render(ctx context.Context, props FieldProps) (Control, error) {
	return f(ctx, props)
}

// Registry maps field paths of one schema to their renderers.
type Registry struct {
	schema    Schema
	renderers map[string]Renderer
}

// NewRegistry fails when an override names a path the schema does not have.
func NewRegistry(schema Schema, overrides map[string]Renderer) (*Registry, error) {
	var unknown []string
	for p := range overrides {
		if !schema.Has(p) {
			unknown = append(unknown, p)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, fmt.Errorf("uischema: unknown field paths %s", strings.Join(unknown, ", "))
	}
	r := &Registry{schema: schema, renderers: make(map[string]Renderer, len(overrides))}
	for p, rr := range overrides {
		r.renderers[p] = rr
	}
	return r, nil
}

func (r *Registry) Lookup(path string) (Renderer, bool) {
	rr, ok := r.renderers[path]
	return rr, ok
}

// Paths returns the customized paths, sorted.
func (r *Registry) Paths() []string {
	out := make([]string, 0, len(r.renderers))
	for p := range r.renderers {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Render renders the control of path for props.
func (r *Registry) Render(ctx context.Context, path string, props FieldProps) (Control, error) {
	rr, ok := r.renderers[path]
	if !ok {
		return Control{}, fmt.Errorf("uischema: no renderer for %q", path)
	}
	return rr.Render(ctx, props)
}

// Control renders the control of one customized path, taking the field value from
// formData.
func (r *Registry) Control(ctx context.Context, formData any, path string, onChange func(value any)) (Control, error) {
	values, err := flatten(formData)
	if err != nil {
		return Control{}, err
	}
	return r.Render(ctx, path, FieldProps{
		FormData: values[path],
		OnChange: func(v any) {
			if onChange != nil {
				onChange(v)
			}
		},
	})
}

// UISchema renders the ui schema of formData, a value of the schema's entity type.
// Hidden fields get {"ui:widget":"hidden"} and customized ones {"ui:field": control}.
// onChange receives the path and new value of a customized field.
func (r *Registry) UISchema(ctx context.Context, formData any, onChange func(path string, value any)) (map[string]any, error) {
	values, err := flatten(formData)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	for _, p := range r.schema.Hidden() {
		setPath(out, p, map[string]any{"ui:widget": "hidden"})
	}
	for _, p := range r.Paths() {
		path := p
		c, err := r.renderers[p].Render(ctx, FieldProps{
			FormData: values[p],
			OnChange: func(v any) {
				if onChange != nil {
					onChange(path, v)
				}
			},
		})
		if err != nil {
			return nil, fmt.Errorf("uischema: render %s: %w", p, err)
		}
		setPath(out, p, map[string]any{"ui:field": c})
	}
	return out, nil
}

func flatten(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	out := map[string]any{}
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			out[prefix+k] = v
			if nested, ok := v.(map[string]any); ok {
				walk(prefix+k+".", nested)
			}
		}
	}
	walk("", m)
	return out, nil
}

func setPath(m map[string]any, path string, v map[string]any) {
	parts := strings.Split(path, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	last := parts[len(parts)-1]
	if existing, ok := m[last].(map[string]any); ok {
		for k, vv := range v {
			existing[k] = vv
		}
		return
	}
	m[last] = v
}

// decode converts a form value into T, going through json when the type differs.
func decode[T any](v any) (T, error) {
	var out T
	if v == nil {
		return out, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}
