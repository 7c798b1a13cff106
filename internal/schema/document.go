package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/me/createtaxdb/pkg/model"
	"gopkg.in/yaml.v3"
)

// TaskResources is the resource request of one scheduled task.
type TaskResources struct {
	Name       string  `json:"name" yaml:"name"`
	CPU        float64 `json:"cpu" yaml:"cpu"`
	MemoryGiB  float64 `json:"memory_gib" yaml:"memory_gib"`
	StorageGiB int     `json:"storage_gib" yaml:"storage_gib"`
}

// DefaultTasks are the two tasks of the workflow, in execution order.
var DefaultTasks = []TaskResources{
	{Name: "initialize", CPU: 0.25, MemoryGiB: 0.5, StorageGiB: 1},
	{Name: "nextflow_runtime", CPU: 4, MemoryGiB: 8, StorageGiB: 100},
}

// Document is the manifest the platform reads to render its input form.
type Document struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Tasks       []TaskResources `json:"tasks" yaml:"tasks"`
	Sections    []DocSection    `json:"sections" yaml:"sections"`
}

// DocSection is a titled group of parameters.
type DocSection struct {
	Title  string     `json:"title,omitempty" yaml:"title,omitempty"`
	Params []DocParam `json:"params" yaml:"params"`
}

// DocParam is the rendered form of a model.Param.
type DocParam struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Default     any    `json:"default" yaml:"default"`
	Description string `json:"description" yaml:"description"`
	Output      bool   `json:"output,omitempty" yaml:"output,omitempty"`
}

// NewDocument builds the manifest for s.
func NewDocument(s *model.Schema, tasks []TaskResources) Document {
	doc := Document{
		Name:        DisplayName,
		Description: Description,
		Tasks:       tasks,
	}
	for _, sec := range Sections(s) {
		ds := DocSection{Title: sec.Title}
		for _, p := range sec.Params {
			ds.Params = append(ds.Params, DocParam{
				Name:        p.Name,
				Type:        p.Type.String(),
				Default:     defaultValue(p.Default),
				Description: p.Description,
				Output:      p.Output,
			})
		}
		doc.Sections = append(doc.Sections, ds)
	}
	return doc
}

func defaultValue(v model.Value) any {
	if !v.Set {
		return nil
	}
	if v.Kind == model.KindBool {
		return v.Bool
	}
	return v.Str
}

// Encode renders doc as "yaml" or "json".
func (doc Document) Encode(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return yaml.Marshal(doc)
	case "json", "":
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want yaml or json)", format)
	}
}
