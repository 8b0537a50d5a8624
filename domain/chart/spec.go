package chart

import (
	"fmt"
	"strings"
)

// Kind identifies a chart family.
type Kind string

const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindScatter Kind = "scatter"
	KindPie     Kind = "pie"
)

// Kinds lists the supported chart families.
func Kinds() []Kind {
	return []Kind{KindBar, KindLine, KindScatter, KindPie}
}

// Supported reports whether k is one of the four chart families.
func (k Kind) Supported() bool {
	switch k {
	case KindBar, KindLine, KindScatter, KindPie:
		return true
	}
	return false
}

// Field is an optional column reference. The zero value is unset; a set
// field always names a column, even if that name is empty.
type Field struct {
	name string
	set  bool
}

// Col returns a set field naming column.
func Col(name string) Field {
	return Field{name: name, set: true}
}

// Unset returns an unset field.
func Unset() Field {
	return Field{}
}

// IsSet reports whether the field names a column.
func (f Field) IsSet() bool { return f.set }

// Name returns the referenced column name, or "" when unset.
func (f Field) Name() string { return f.name }

// Ptr returns the column name as a pointer, nil when unset.
func (f Field) Ptr() *string {
	if !f.set {
		return nil
	}
	name := f.name
	return &name
}

// FieldFromPtr converts a nullable name into a field.
func FieldFromPtr(p *string) Field {
	if p == nil {
		return Field{}
	}
	return Col(*p)
}

func (f Field) String() string {
	if !f.set {
		return "<unset>"
	}
	return f.name
}

// Spec is a declarative chart configuration. It is a closed set: BarSpec,
// LineSpec, ScatterSpec, PieSpec and UnsupportedSpec.
type Spec interface {
	Kind() Kind
	// Required returns the fields that must be set for the kind.
	Required() []Field
	// Referenced returns every set field.
	Referenced() []Field
	isSpec()
}

// BarSpec renders one bar per (x, color) combination.
type BarSpec struct {
	X, Y  Field
	Color Field
}

// LineSpec renders y over x sorted ascending, one line per color group.
type LineSpec struct {
	X, Y  Field
	Color Field
}

// ScatterSpec renders one point per row.
type ScatterSpec struct {
	X, Y  Field
	Color Field
	Size  Field
}

// PieSpec renders values summed per distinct name.
type PieSpec struct {
	Values Field
	Names  Field
}

// UnsupportedSpec carries a kind outside the supported set so that the
// mapper can report it instead of the caller failing.
type UnsupportedSpec struct {
	Name string
}

func (BarSpec) Kind() Kind           { return KindBar }
func (LineSpec) Kind() Kind          { return KindLine }
func (ScatterSpec) Kind() Kind       { return KindScatter }
func (PieSpec) Kind() Kind           { return KindPie }
func (s UnsupportedSpec) Kind() Kind { return Kind(s.Name) }

func (s BarSpec) Required() []Field         { return []Field{s.X, s.Y} }
func (s LineSpec) Required() []Field        { return []Field{s.X, s.Y} }
func (s ScatterSpec) Required() []Field     { return []Field{s.X, s.Y} }
func (s PieSpec) Required() []Field         { return []Field{s.Values, s.Names} }
func (UnsupportedSpec) Required() []Field   { return nil }
func (UnsupportedSpec) Referenced() []Field { return nil }

func (s BarSpec) Referenced() []Field     { return setFields(s.X, s.Y, s.Color) }
func (s LineSpec) Referenced() []Field    { return setFields(s.X, s.Y, s.Color) }
func (s ScatterSpec) Referenced() []Field { return setFields(s.X, s.Y, s.Color, s.Size) }
func (s PieSpec) Referenced() []Field     { return setFields(s.Values, s.Names) }

func (BarSpec) isSpec()         {}
func (LineSpec) isSpec()        {}
func (ScatterSpec) isSpec()     {}
func (PieSpec) isSpec()         {}
func (UnsupportedSpec) isSpec() {}

func setFields(fields ...Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.IsSet() {
			out = append(out, f)
		}
	}
	return out
}

// Complete reports whether every required field of spec is set.
func Complete(spec Spec) bool {
	for _, f := range spec.Required() {
		if !f.IsSet() {
			return false
		}
	}
	return true
}

// Config is the flat, nullable form of a chart specification used on the
// wire. Fields irrelevant to the kind are dropped by Spec.
type Config struct {
	Type   string  `json:"type"`
	X      *string `json:"x"`
	Y      *string `json:"y"`
	Color  *string `json:"color"`
	Size   *string `json:"size,omitempty"`
	Values *string `json:"values,omitempty"`
	Names  *string `json:"names,omitempty"`
}

// Spec converts the envelope into its variant.
func (c Config) Spec() Spec {
	switch Kind(strings.ToLower(strings.TrimSpace(c.Type))) {
	case KindBar:
		return BarSpec{X: FieldFromPtr(c.X), Y: FieldFromPtr(c.Y), Color: FieldFromPtr(c.Color)}
	case KindLine:
		return LineSpec{X: FieldFromPtr(c.X), Y: FieldFromPtr(c.Y), Color: FieldFromPtr(c.Color)}
	case KindScatter:
		return ScatterSpec{
			X: FieldFromPtr(c.X), Y: FieldFromPtr(c.Y),
			Color: FieldFromPtr(c.Color), Size: FieldFromPtr(c.Size),
		}
	case KindPie:
		return PieSpec{Values: FieldFromPtr(c.Values), Names: FieldFromPtr(c.Names)}
	}
	return UnsupportedSpec{Name: c.Type}
}

// ToConfig converts a spec back into its envelope.
func ToConfig(spec Spec) Config {
	switch s := spec.(type) {
	case BarSpec:
		return Config{Type: string(KindBar), X: s.X.Ptr(), Y: s.Y.Ptr(), Color: s.Color.Ptr()}
	case LineSpec:
		return Config{Type: string(KindLine), X: s.X.Ptr(), Y: s.Y.Ptr(), Color: s.Color.Ptr()}
	case ScatterSpec:
		return Config{Type: string(KindScatter), X: s.X.Ptr(), Y: s.Y.Ptr(), Color: s.Color.Ptr(), Size: s.Size.Ptr()}
	case PieSpec:
		return Config{Type: string(KindPie), Values: s.Values.Ptr(), Names: s.Names.Ptr()}
	case UnsupportedSpec:
		return Config{Type: s.Name}
	}
	panic(fmt.Sprintf("chart: unknown spec %T", spec))
}

// Empty returns an unconfigured spec of the given kind.
func Empty(kind Kind) Spec {
	return Config{Type: string(kind)}.Spec()
}
