package model

import "fmt"

// ParamKind is the base type of a pipeline parameter.
type ParamKind string

const (
	KindString    ParamKind = "string"
	KindBool      ParamKind = "bool"
	KindFile      ParamKind = "file"
	KindDirectory ParamKind = "directory"
)

// Valid reports whether k is one of the supported parameter kinds.
func (k ParamKind) Valid() bool {
	switch k {
	case KindString, KindBool, KindFile, KindDirectory:
		return true
	}
	return false
}

// ParamType is a parameter kind, optionally wrapped as optional<T>.
type ParamType struct {
	Kind     ParamKind `json:"kind" yaml:"kind"`
	Optional bool      `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Required returns a non-optional type of kind k.
func Required(k ParamKind) ParamType { return ParamType{Kind: k} }

// Optional returns optional<k>.
func Optional(k ParamKind) ParamType { return ParamType{Kind: k, Optional: true} }

// String renders the type the way the platform displays it, e.g. "optional<file>".
func (t ParamType) String() string {
	if t.Optional {
		return "optional<" + string(t.Kind) + ">"
	}
	return string(t.Kind)
}

// BoolFlagStyle selects how a boolean parameter becomes command-line tokens.
type BoolFlagStyle string

const (
	// BoolPresence emits "--name" when true and nothing when false.
	BoolPresence BoolFlagStyle = "presence"
	// BoolExplicit emits "--name true" or "--name false".
	BoolExplicit BoolFlagStyle = "explicit"
)

// Param describes one pipeline input.
type Param struct {
	Name        string        `json:"name" yaml:"name"`
	Type        ParamType     `json:"type" yaml:"type"`
	Default     Value         `json:"default" yaml:"default"`
	Section     string        `json:"section_title,omitempty" yaml:"section_title,omitempty"` // "" continues the previous section
	Description string        `json:"description" yaml:"description"`
	Output      bool          `json:"output,omitempty" yaml:"output,omitempty"`
	BoolFlag    BoolFlagStyle `json:"bool_flag,omitempty" yaml:"bool_flag,omitempty"`
}

// Schema is the ordered set of pipeline parameters.
// Order is declaration order and drives flag order.
type Schema struct {
	params []Param
	index  map[string]int
}

// NewSchema validates params and returns an immutable Schema.
// Names must be unique and non-empty, kinds must be valid, and defaults
// must match the declared kind.
func NewSchema(params ...Param) (*Schema, error) {
	s := &Schema{
		params: make([]Param, 0, len(params)),
		index:  make(map[string]int, len(params)),
	}
	for i, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("param[%d]: empty name", i)
		}
		if _, dup := s.index[p.Name]; dup {
			return nil, fmt.Errorf("param %q: duplicate name", p.Name)
		}
		if !p.Type.Kind.Valid() {
			return nil, fmt.Errorf("param %q: unsupported kind %q", p.Name, p.Type.Kind)
		}
		if p.Default.Set && p.Default.Kind != p.Type.Kind {
			return nil, fmt.Errorf("param %q: default kind %q does not match %q", p.Name, p.Default.Kind, p.Type.Kind)
		}
		if p.Type.Kind == KindBool && p.BoolFlag == "" {
			p.BoolFlag = BoolPresence
		}
		s.index[p.Name] = len(s.params)
		s.params = append(s.params, p)
	}
	return s, nil
}

// MustSchema is NewSchema for static declarations; it panics on error.
func MustSchema(params ...Param) *Schema {
	s, err := NewSchema(params...)
	if err != nil {
		panic(err)
	}
	return s
}

// Params returns a copy of the parameters in declaration order.
func (s *Schema) Params() []Param {
	out := make([]Param, len(s.params))
	copy(out, s.params)
	return out
}

// Lookup returns the parameter with the given name.
func (s *Schema) Lookup(name string) (Param, bool) {
	i, ok := s.index[name]
	if !ok {
		return Param{}, false
	}
	return s.params[i], true
}

// Len returns the number of parameters.
func (s *Schema) Len() int { return len(s.params) }
