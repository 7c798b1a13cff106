package model

import (
	"strings"
	"testing"
)

func TestNewSchema_PreservesOrder(t *testing.T) {
	s, err := NewSchema(
		Param{Name: "b", Type: Required(KindString)},
		Param{Name: "a", Type: Optional(KindBool)},
		Param{Name: "c", Type: Optional(KindFile)},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	var names []string
	for _, p := range s.Params() {
		names = append(names, p.Name)
	}
	if got := strings.Join(names, ","); got != "b,a,c" {
		t.Errorf("order = %s, want b,a,c", got)
	}
	if p, ok := s.Lookup("a"); !ok || p.BoolFlag != BoolPresence {
		t.Errorf("Lookup(a) = %+v, %v; want presence bool flag", p, ok)
	}
}

func TestNewSchema_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		params []Param
		want   string
	}{
		{"duplicate", []Param{{Name: "x", Type: Required(KindString)}, {Name: "x", Type: Required(KindBool)}}, "duplicate"},
		{"empty name", []Param{{Type: Required(KindString)}}, "empty name"},
		{"bad kind", []Param{{Name: "x", Type: ParamType{Kind: "int"}}}, "unsupported kind"},
		{"default mismatch", []Param{{Name: "x", Type: Optional(KindBool), Default: String("yes")}}, "does not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.params...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestParamType_String(t *testing.T) {
	if got := Optional(KindFile).String(); got != "optional<file>" {
		t.Errorf("got %q", got)
	}
	if got := Required(KindDirectory).String(); got != "directory" {
		t.Errorf("got %q", got)
	}
}

func TestValues_Resolve(t *testing.T) {
	p := Param{Name: "malt_sequencetype", Type: Optional(KindString), Default: String("DNA")}
	if got := (Values{}).Resolve(p); got.Str != "DNA" {
		t.Errorf("default not applied: %+v", got)
	}
	if got := (Values{"malt_sequencetype": String("Protein")}).Resolve(p); got.Str != "Protein" {
		t.Errorf("explicit value not preferred: %+v", got)
	}
	if got := (Values{"malt_sequencetype": Unset()}).Resolve(p); got.Str != "DNA" {
		t.Errorf("unset value should fall back to default: %+v", got)
	}
	if got := (Values{}).Resolve(Param{Name: "email", Type: Optional(KindString)}); got.Set {
		t.Errorf("no value and no default should be unset: %+v", got)
	}
}
