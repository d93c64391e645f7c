// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package project

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var builtinTemplates []byte

// TemplateFile is a file written by a template after its command ran.
type TemplateFile struct {
	Path    string `yaml:"path"`
	Content string `yaml:"content"`
}

// Template describes how to scaffold one kind of project.
type Template struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Command      string         `yaml:"command"`
	Dirs         []string       `yaml:"dirs"`
	Files        []TemplateFile `yaml:"files"`
	PostCommands []string       `yaml:"post_commands"`
}

// TemplateInfo is the listing form of a template.
type TemplateInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog is an ordered set of templates.
type Catalog struct {
	templates []Template
	byID      map[string]int
}

type catalogFile struct {
	Templates []Template `yaml:"templates"`
}

// ParseCatalog decodes a YAML template catalog. IDs must be unique and every
// template needs a command.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(f.Templates))}
	for _, t := range f.Templates {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return nil, fmt.Errorf("template %q has no id", t.Name)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		if strings.TrimSpace(t.Command) == "" {
			return nil, fmt.Errorf("template %q has no command", t.ID)
		}
		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// DefaultCatalog returns the built-in templates.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(builtinTemplates)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the template with id.
func (c *Catalog) Get(id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.templates[i], true
}

// List returns id and display name of every template in catalog order.
func (c *Catalog) List() []TemplateInfo {
	out := make([]TemplateInfo, len(c.templates))
	for i, t := range c.templates {
		out[i] = TemplateInfo{ID: t.ID, Name: t.Name}
	}
	return out
}

// render substitutes the project name into template file content.
func render(content, name string) string {
	return strings.ReplaceAll(content, "{{name}}", name)
}
