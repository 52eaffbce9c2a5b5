package data

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/james-salafatinos/mmo4/internal/core/ecs"
)

// Prefab is an entity template: tags plus per-type component payloads,
// instantiated through the component registry.
type Prefab struct {
	Name       string                    `yaml:"name"`
	Tags       []string                  `yaml:"tags"`
	Components map[string]map[string]any `yaml:"components"`
}

// SpawnEntry defines how many instances of a prefab the world starts with.
type SpawnEntry struct {
	Prefab string  `yaml:"prefab"`
	Count  int     `yaml:"count"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
}

type prefabListFile struct {
	Prefabs []Prefab     `yaml:"prefabs"`
	Spawns  []SpawnEntry `yaml:"spawns"`
}

// PrefabTable holds all prefabs indexed by name, plus the initial spawn list.
type PrefabTable struct {
	prefabs map[string]*Prefab
	spawns  []SpawnEntry
}

// LoadPrefabTable loads prefabs from a YAML file.
func LoadPrefabTable(path string) (*PrefabTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefab list: %w", err)
	}
	var f prefabListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse prefab list %s: %w", path, err)
	}
	t := &PrefabTable{
		prefabs: make(map[string]*Prefab, len(f.Prefabs)),
		spawns:  f.Spawns,
	}
	for i := range f.Prefabs {
		p := &f.Prefabs[i]
		if p.Name == "" {
			return nil, fmt.Errorf("prefab list %s: entry %d has no name", path, i)
		}
		t.prefabs[p.Name] = p
	}
	return t, nil
}

func (t *PrefabTable) Get(name string) *Prefab {
	return t.prefabs[name]
}

func (t *PrefabTable) Count() int {
	return len(t.prefabs)
}

// ErrUnknownPrefab is returned when spawning a name absent from the table.
var ErrUnknownPrefab = errors.New("unknown prefab")

// Spawn instantiates a prefab into the world. Component types missing from
// the world's registry are skipped with a warning, tolerating prefab files
// written against other builds.
func (t *PrefabTable) Spawn(w *ecs.World, name string, log *zap.Logger) (*ecs.Entity, error) {
	p := t.prefabs[name]
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrefab, name)
	}
	if log == nil {
		log = zap.NewNop()
	}

	e := w.NewEntity(name)
	for _, tag := range p.Tags {
		e.AddTag(tag)
	}
	reg := w.Registry()
	for typeName, payload := range p.Components {
		c, err := reg.Create(ecs.TypeID(typeName), payload)
		if err != nil {
			log.Warn("prefab component skipped",
				zap.String("prefab", name),
				zap.String("type", typeName),
				zap.Error(err))
			continue
		}
		e.AddComponent(c)
	}
	w.AddEntity(e)
	return e, nil
}

// SpawnAll instantiates the table's spawn list. Entries naming unknown
// prefabs are skipped with a warning. Returns the number of entities spawned.
func (t *PrefabTable) SpawnAll(w *ecs.World, log *zap.Logger) int {
	if log == nil {
		log = zap.NewNop()
	}
	total := 0
	for _, spawn := range t.spawns {
		count := spawn.Count
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			e, err := t.Spawn(w, spawn.Prefab, log)
			if err != nil {
				log.Warn("spawn skipped",
					zap.String("prefab", spawn.Prefab),
					zap.Error(err))
				break
			}
			if e.HasComponent(ecs.TypeID("transform")) && (spawn.X != 0 || spawn.Y != 0) {
				e.Deserialize(map[string]any{
					"components": map[string]any{
						"transform": map[string]any{"x": spawn.X, "y": spawn.Y},
					},
				}, true, nil)
				w.RefreshPosition(e)
			}
			total++
		}
	}
	return total
}
