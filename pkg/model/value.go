package model

import "strconv"

// Value is a resolved parameter value. The zero Value is unset, which is how
// an absent optional is represented.
type Value struct {
	Kind ParamKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Str  string    `json:"str,omitempty" yaml:"str,omitempty"`
	Bool bool      `json:"bool,omitempty" yaml:"bool,omitempty"`
	Set  bool      `json:"set" yaml:"set"`
}

// Values maps parameter names to resolved values.
type Values map[string]Value

// String returns a set string value.
func String(s string) Value { return Value{Kind: KindString, Str: s, Set: true} }

// Bool returns a set boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b, Set: true} }

// File returns a set file reference (a location such as latch:///data/x.csv).
func File(location string) Value { return Value{Kind: KindFile, Str: location, Set: true} }

// Directory returns a set directory reference.
func Directory(location string) Value { return Value{Kind: KindDirectory, Str: location, Set: true} }

// Unset returns an absent value.
func Unset() Value { return Value{} }

// Token renders the value as a single command-line token.
func (v Value) Token() string {
	if v.Kind == KindBool {
		return strconv.FormatBool(v.Bool)
	}
	return v.Str
}

// Resolve returns the value for p: the explicit value when set, else the
// declared default, else an unset Value.
func (vs Values) Resolve(p Param) Value {
	if v, ok := vs[p.Name]; ok && v.Set {
		return v
	}
	return p.Default
}
