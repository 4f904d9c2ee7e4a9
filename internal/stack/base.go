package stack

import (
	"errors"
	"fmt"
	"html"
	"maps"
	"math"
	"slices"
	"strings"
)

// ErrUnknownOption is returned when setting an option a stack does not have.
var ErrUnknownOption = errors.New("unknown stack option")

// ErrOptionType is returned when an option value has the wrong type.
var ErrOptionType = errors.New("invalid stack option type")

// Base holds the configuration shared by every stack: its name, the
// enabled flag, keyed options with defaults, and per-element HTML
// attributes. Variants embed it.
type Base struct {
	name     string
	disabled bool
	options  map[string]any
	attrs    map[string]*attrList
}

// attrList keeps attribute insertion order, which is render order.
type attrList struct {
	names  []string
	values map[string]string
}

func newBase(name string, defaults map[string]any) Base {
	opts := make(map[string]any, len(defaults))
	maps.Copy(opts, defaults)

	return Base{
		name:    name,
		options: opts,
		attrs:   make(map[string]*attrList),
	}
}

// Name returns the registry name of the stack.
func (b *Base) Name() string { return b.name }

// Enabled reports whether the orchestrator should run the stack.
func (b *Base) Enabled() bool { return !b.disabled }

// SetEnabled toggles the stack.
func (b *Base) SetEnabled(enabled bool) { b.disabled = !enabled }

// Option returns the current value of an option.
func (b *Base) Option(key string) (any, bool) {
	v, ok := b.options[key]

	return v, ok
}

// Options returns a copy of all options.
func (b *Base) Options() map[string]any {
	out := make(map[string]any, len(b.options))
	maps.Copy(out, b.options)

	return out
}

// SetOption sets an existing option. The value must match the type of the
// default; whole float64 values are accepted for int options so decoded
// JSON numbers can be applied directly.
func (b *Base) SetOption(key string, value any) error {
	cur, ok := b.options[key]
	if !ok {
		valid := slices.Sorted(maps.Keys(b.options))
		if len(valid) == 0 {
			return fmt.Errorf("%w: %s (stack %s has no options)", ErrUnknownOption, key, b.name)
		}

		return fmt.Errorf("%w: %s (valid options: %s)", ErrUnknownOption, key, strings.Join(valid, ", "))
	}

	v, err := coerce(cur, value)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", b.name, key, err)
	}

	b.options[key] = v

	return nil
}

func coerce(cur, value any) (any, error) {
	switch cur.(type) {
	case string:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case bool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case int:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v == math.Trunc(v) && !math.IsInf(v, 0) {
				return int(v), nil
			}
		}
	}

	return nil, fmt.Errorf("%w: want %T, got %T", ErrOptionType, cur, value)
}

func (b *Base) optString(key string) string {
	s, _ := b.options[key].(string)

	return s
}

func (b *Base) optInt(key string) int {
	n, _ := b.options[key].(int)

	return n
}

func (b *Base) optBool(key string) bool {
	v, _ := b.options[key].(bool)

	return v
}

// SetAttribute sets an HTML attribute rendered on element at display time.
// New attributes are appended after existing ones.
func (b *Base) SetAttribute(element, name, value string) {
	al, ok := b.attrs[element]
	if !ok {
		al = &attrList{values: make(map[string]string)}
		b.attrs[element] = al
	}

	if _, exists := al.values[name]; !exists {
		al.names = append(al.names, name)
	}

	al.values[name] = value
}

// Attribute returns an attribute value for element.
func (b *Base) Attribute(element, name string) (string, bool) {
	al, ok := b.attrs[element]
	if !ok {
		return "", false
	}

	v, ok := al.values[name]

	return v, ok
}

// Attributes returns the attributes of element as ordered name/value pairs.
func (b *Base) Attributes(element string) [][2]string {
	al, ok := b.attrs[element]
	if !ok {
		return nil
	}

	out := make([][2]string, 0, len(al.names))
	for _, n := range al.names {
		out = append(out, [2]string{n, al.values[n]})
	}

	return out
}

// renderAttributes formats the attributes of element for insertion into a
// tag. Each attribute is preceded by a space; names and values are escaped.
func (b *Base) renderAttributes(element string) string {
	al, ok := b.attrs[element]
	if !ok || len(al.names) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, n := range al.names {
		sb.WriteByte(' ')
		sb.WriteString(html.EscapeString(n))
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(al.values[n]))
		sb.WriteByte('"')
	}

	return sb.String()
}
