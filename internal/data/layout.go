package data

import (
	"fmt"
	"os"

	"github.com/l1jgo/entitypool/internal/core/ecs"
	"gopkg.in/yaml.v3"
)

// GroupSpec declares one pool group.
type GroupSpec struct {
	Name       string   `yaml:"name"`
	Require    []string `yaml:"require"`    // empty = every entity
	SortBy     string   `yaml:"sort_by"`    // optional attribute to order members by
	Descending bool     `yaml:"descending"` // with sort_by
}

// SystemSpec declares one system. Exactly one of Builtin, Script or Forward
// is set.
type SystemSpec struct {
	Builtin string         `yaml:"builtin"`
	Script  string         `yaml:"script"` // relative to the scripts dir
	Forward bool           `yaml:"forward"`
	Group   string         `yaml:"group"` // forward target, empty = whole pool
	Options map[string]any `yaml:"options"`
}

// Kind names the source of the definition for logs and errors.
func (s SystemSpec) Kind() string {
	switch {
	case s.Builtin != "":
		return "builtin:" + s.Builtin
	case s.Script != "":
		return "script:" + s.Script
	case s.Forward && s.Group != "":
		return "forward:" + s.Group
	case s.Forward:
		return "forward"
	}
	return "unknown"
}

type Layout struct {
	Groups   []GroupSpec      `yaml:"groups"`
	Systems  []SystemSpec     `yaml:"systems"`
	Entities []map[string]any `yaml:"entities"`
}

// LoadLayout loads a pool layout from a YAML file.
func LoadLayout(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	l, err := ParseLayout(raw)
	if err != nil {
		return nil, fmt.Errorf("parse layout %s: %w", path, err)
	}
	return l, nil
}

func ParseLayout(raw []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return nil, err
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *Layout) Validate() error {
	seen := make(map[string]bool, len(l.Groups))
	for i, g := range l.Groups {
		if g.Name == "" {
			return fmt.Errorf("groups[%d]: name is required", i)
		}
		if seen[g.Name] {
			return fmt.Errorf("groups[%d]: duplicate group %q", i, g.Name)
		}
		seen[g.Name] = true
		if g.Descending && g.SortBy == "" {
			return fmt.Errorf("groups[%d]: descending without sort_by", i)
		}
	}
	for i, s := range l.Systems {
		set := 0
		if s.Builtin != "" {
			set++
		}
		if s.Script != "" {
			set++
		}
		if s.Forward {
			set++
		}
		if set != 1 {
			return fmt.Errorf("systems[%d]: exactly one of builtin, script, forward is required", i)
		}
		if s.Group != "" {
			if !s.Forward {
				return fmt.Errorf("systems[%d]: group only applies to forward systems", i)
			}
			if !seen[s.Group] {
				return fmt.Errorf("systems[%d]: unknown group %q", i, s.Group)
			}
		}
	}
	return nil
}

// GroupConfigs converts the group specs for ecs.NewPool.
func (l *Layout) GroupConfigs() map[string]ecs.GroupConfig {
	out := make(map[string]ecs.GroupConfig, len(l.Groups))
	for _, g := range l.Groups {
		cfg := ecs.GroupConfig{Filter: ecs.None()}
		if len(g.Require) > 0 {
			cfg.Filter = ecs.RequireKeys(g.Require...)
		}
		if g.SortBy != "" {
			cfg.Less = SortBy(g.SortBy, g.Descending)
		}
		out[g.Name] = cfg
	}
	return out
}

// SortBy orders entities by a numeric or string attribute. Entities without
// a comparable value sort first; numbers sort before strings.
func SortBy(key string, descending bool) func(a, b *ecs.Entity) bool {
	return func(a, b *ecs.Entity) bool {
		c := compareAttr(a, b, key)
		if descending {
			return c > 0
		}
		return c < 0
	}
}

func compareAttr(a, b *ecs.Entity, key string) int {
	ra, rb := rank(a, key), rank(b, key)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 1:
		na, _ := a.Number(key)
		nb, _ := b.Number(key)
		return cmp3(na < nb, na > nb)
	case 2:
		sa := a.Value(key).(string)
		sb := b.Value(key).(string)
		return cmp3(sa < sb, sa > sb)
	}
	return 0
}

func rank(e *ecs.Entity, key string) int {
	if _, ok := e.Number(key); ok {
		return 1
	}
	if _, ok := e.Value(key).(string); ok {
		return 2
	}
	return 0
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}
