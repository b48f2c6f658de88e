package core

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/filingmap/internal/mapping"
)

// definitionFile is the YAML layout of one table definition:
//
//	id: 1
//	name: Balance Sheet
//	group: AOC-4
//	strategy: period-pair
//	labels:
//	  current: Current balance sheet
//	  previous: Previous balance sheet
//	template:
//	  "Share capital": [Row1.ShareCap, Row1.ShareCapP]
type definitionFile struct {
	ID       int                  `yaml:"id"`
	Name     string               `yaml:"name"`
	Group    string               `yaml:"group"`
	Strategy string               `yaml:"strategy"`
	Labels   mapping.PeriodLabels `yaml:"labels"`
	Template mapping.Template     `yaml:"template"`
}

// ParseDefinition decodes a YAML table definition.
func ParseDefinition(data []byte) (TableDefinition, error) {
	var f definitionFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return TableDefinition{}, fmt.Errorf("invalid template: %w", err)
	}

	strategy, err := mapping.ParseStrategy(f.Strategy)
	if err != nil {
		return TableDefinition{}, fmt.Errorf("invalid template %q: %w", f.Name, err)
	}

	return TableDefinition{
		Info: TableInfo{
			ID:       f.ID,
			Name:     strings.TrimSpace(f.Name),
			Group:    f.Group,
			Strategy: strategy,
		},
		Labels:   f.Labels,
		Template: f.Template,
	}, nil
}

// LoadDefinitions reads every *.yaml and *.yml file directly under dir,
// in file name order.
func LoadDefinitions(fsys fs.FS, dir string) ([]TableDefinition, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(path.Ext(e.Name())) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := make([]TableDefinition, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		def, err := ParseDefinition(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// RegisterFS loads and registers every definition under dir. It stops at
// the first definition that fails to load or register.
func (r *Registry) RegisterFS(fsys fs.FS, dir string) (int, error) {
	defs, err := LoadDefinitions(fsys, dir)
	if err != nil {
		return 0, err
	}
	for i, def := range defs {
		if err := r.Register(def); err != nil {
			return i, err
		}
	}
	return len(defs), nil
}
