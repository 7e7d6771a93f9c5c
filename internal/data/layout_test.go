package data

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/l1jgo/entitypool/internal/core/ecs"
)

const sampleLayout = `
groups:
  - name: actors
    require: [actor]
    sort_by: z
  - name: everything
systems:
  - builtin: expiry
  - script: mover.lua
  - forward: true
    group: actors
entities:
  - {actor: true, z: 2, name: orc}
  - {name: rock, ttl: 3.5, tags: {solid: true}}
`

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout([]byte(sampleLayout))
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	if len(l.Groups) != 2 || len(l.Systems) != 3 || len(l.Entities) != 2 {
		t.Fatalf("layout = %+v", l)
	}
	kinds := []string{l.Systems[0].Kind(), l.Systems[1].Kind(), l.Systems[2].Kind()}
	if got := strings.Join(kinds, " "); got != "builtin:expiry script:mover.lua forward:actors" {
		t.Fatalf("kinds = %s", got)
	}
	if tags, ok := l.Entities[1]["tags"].(map[string]any); !ok || tags["solid"] != true {
		t.Fatalf("nested attribute = %#v", l.Entities[1]["tags"])
	}

	groups := l.GroupConfigs()
	actor := ecs.NewEntity(map[string]any{"actor": true})
	if !groups["actors"].Filter.Match(actor) || groups["actors"].Filter.Match(ecs.NewEntity(nil)) {
		t.Fatalf("actors filter wrong")
	}
	if groups["actors"].Less == nil || groups["everything"].Less != nil {
		t.Fatalf("sort comparators not wired from sort_by")
	}
	if !groups["everything"].Filter.Match(ecs.NewEntity(nil)) {
		t.Fatalf("group without require should match everything")
	}
}

func TestLayoutValidation(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"unnamed_group", "groups: [{require: [a]}]", "groups[0]: name"},
		{"duplicate_group", "groups: [{name: a}, {name: a}]", "duplicate"},
		{"descending_without_key", "groups: [{name: a, descending: true}]", "sort_by"},
		{"empty_system", "systems: [{}]", "systems[0]"},
		{"two_sources", "systems: [{builtin: expiry, script: x.lua}]", "exactly one"},
		{"group_on_script", "groups: [{name: a}]\nsystems: [{script: x.lua, group: a}]", "only applies"},
		{"unknown_group", "systems: [{forward: true, group: ghosts}]", "unknown group"},
		{"bad_yaml", "groups: [", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseLayout([]byte(c.src))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

func TestSortBy(t *testing.T) {
	mk := func(name string, v any) *ecs.Entity {
		e := ecs.NewEntity(map[string]any{"name": name})
		if v != nil {
			e.Set("k", v)
		}
		return e
	}
	ents := []*ecs.Entity{mk("s_b", "b"), mk("n2", 2), mk("none", nil), mk("n1", 1.5), mk("s_a", "a")}
	order := func(desc bool) string {
		es := append([]*ecs.Entity(nil), ents...)
		less := SortBy("k", desc)
		sort.SliceStable(es, func(i, j int) bool { return less(es[i], es[j]) })
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.Value("name").(string)
		}
		return strings.Join(out, ",")
	}
	if got := order(false); got != "none,n1,n2,s_a,s_b" {
		t.Fatalf("ascending = %s", got)
	}
	if got := order(true); got != "s_b,s_a,n2,n1,none" {
		t.Fatalf("descending = %s", got)
	}
}

func TestLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	if err := os.WriteFile(path, []byte(sampleLayout), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLayout(path); err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	if _, err := LoadLayout(path + ".missing"); err == nil {
		t.Fatalf("missing layout should fail")
	}
}
