// Package catalog holds the form field definitions shared by the admin forms
// and the validation of team, player and statistics input.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fields.yaml
var fieldsYAML []byte

type Field struct {
	ID       string   `yaml:"id" json:"id"`
	Label    string   `yaml:"label" json:"label"`
	Type     string   `yaml:"type,omitempty" json:"type,omitempty"`
	Required bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Options  []string `yaml:"options,omitempty" json:"options,omitempty"`
}

type Group struct {
	Title  string   `yaml:"title" json:"title"`
	Fields []string `yaml:"fields" json:"fields"`
}

type StatGroup struct {
	ID     string  `yaml:"id" json:"id"`
	Title  string  `yaml:"title" json:"title"`
	Fields []Field `yaml:"fields" json:"fields"`
}

type Catalog struct {
	Sectors           []string    `yaml:"sectors" json:"sectors"`
	TeamFields        []Field     `yaml:"team_fields" json:"team_fields"`
	TeamGroups        []Group     `yaml:"team_groups" json:"team_groups"`
	PlayerFields      []Field     `yaml:"player_fields" json:"player_fields"`
	PlayerGroups      []Group     `yaml:"player_groups" json:"player_groups"`
	RegistrationStats []StatGroup `yaml:"registration_stats" json:"registration_stats"`
	SeasonStats       []StatGroup `yaml:"season_stats" json:"season_stats"`

	stats map[string]map[string]Field
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(fieldsYAML)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse field catalog: %w", err)
	}
	if len(c.Sectors) == 0 {
		return nil, fmt.Errorf("field catalog has no sectors")
	}

	c.stats = make(map[string]map[string]Field)
	for _, layout := range [][]StatGroup{c.RegistrationStats, c.SeasonStats} {
		for _, g := range layout {
			if c.stats[g.ID] == nil {
				c.stats[g.ID] = make(map[string]Field)
			}
			for _, f := range g.Fields {
				c.stats[g.ID][f.ID] = f
			}
		}
	}
	return &c, nil
}

// StatField looks up a statistics field in either layout.
func (c *Catalog) StatField(group, field string) (Field, bool) {
	f, ok := c.stats[group][field]
	return f, ok
}

func (c *Catalog) IsSector(s string) bool {
	for _, sector := range c.Sectors {
		if sector == s {
			return true
		}
	}
	return false
}
