package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DataTypeRoute names the search index and document type for a data type.
type DataTypeRoute struct {
	SearchIndex string `yaml:"search_index"`
	SearchType  string `yaml:"search_type"`
}

// WorkflowSpec describes a workflow definition known to the engine.
// Class is the name the engine registers the workflow under; Name is the
// human-facing name and defaults to Class.
type WorkflowSpec struct {
	Name        string `yaml:"name"`
	Class       string `yaml:"class"`
	DataType    string `yaml:"data_type"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// HoldingPen is the YAML document listing data types and workflow definitions.
//
//	data_types:
//	  hep:
//	    search_index: holdingpen-hep
//	    search_type: hep
//	workflows:
//	  - class: article
//	    name: Article ingestion
//	    data_type: hep
type HoldingPen struct {
	DataTypes map[string]DataTypeRoute `yaml:"data_types"`
	Workflows []WorkflowSpec           `yaml:"workflows"`
}

// DefaultHoldingPen is used when no file is configured.
func DefaultHoldingPen() HoldingPen {
	return HoldingPen{
		DataTypes: map[string]DataTypeRoute{
			"default": {SearchIndex: "holdingpen", SearchType: "record"},
		},
		Workflows: []WorkflowSpec{
			{Class: "default", Name: "default", DataType: "default"},
		},
	}
}

// LoadHoldingPen reads and validates the YAML file at path.
// An empty path yields DefaultHoldingPen.
func LoadHoldingPen(path string) (HoldingPen, error) {
	if path == "" {
		return DefaultHoldingPen(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return HoldingPen{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return ParseHoldingPen(data)
}

// ParseHoldingPen decodes and validates a HoldingPen document.
func ParseHoldingPen(data []byte) (HoldingPen, error) {
	var hp HoldingPen
	if err := yaml.Unmarshal(data, &hp); err != nil {
		return HoldingPen{}, fmt.Errorf("config: parse holding pen file: %w", err)
	}
	for name, route := range hp.DataTypes {
		if route.SearchIndex == "" {
			return HoldingPen{}, fmt.Errorf("config: data type %q: search_index required", name)
		}
		if route.SearchType == "" {
			return HoldingPen{}, fmt.Errorf("config: data type %q: search_type required", name)
		}
	}
	seen := make(map[string]bool, len(hp.Workflows))
	for i := range hp.Workflows {
		wf := &hp.Workflows[i]
		if wf.Class == "" {
			return HoldingPen{}, fmt.Errorf("config: workflows[%d]: class required", i)
		}
		if seen[wf.Class] {
			return HoldingPen{}, fmt.Errorf("config: duplicate workflow %q", wf.Class)
		}
		seen[wf.Class] = true
		if wf.Name == "" {
			wf.Name = wf.Class
		}
	}
	return hp, nil
}
