// Package recipe implements the "recipe list|run|create" CLI surface
// (spec.md §CLI surface). Recipes are TOML files describing a named
// sequence of shell steps; spec.md's Non-goals name "recipe/template
// orchestration" as an external, thin presentation layer, so this package
// stays intentionally minimal: load/list/create recipe files and run their
// steps as external processes, with no core typed-interface involvement.
// Grounded on the teacher's internal/formula usage in cmd/bd/formula.go
// (multi-path search, TOML via github.com/BurntSushi/toml, first-match-wins
// shadowing) and its own direct dependency on that library.
package recipe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const recipeExt = ".toml"

// Step is one shell command in a recipe, run in sequence.
type Step struct {
	Name    string `toml:"name"`
	Command string `toml:"command"`
}

// Recipe is a named sequence of steps loaded from a TOML file.
type Recipe struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Steps       []Step `toml:"steps"`

	Source string `toml:"-"` // path it was loaded from, not persisted
}

// SearchPaths returns the recipe directories in priority order: project
// (.kg/recipes), then user (~/.kg/recipes). Earlier paths shadow later ones
// on a name collision.
func SearchPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".kg", "recipes"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".kg", "recipes"))
	}
	return paths
}

// List scans every search path and returns every distinct recipe, sorted by
// name, with project recipes shadowing user recipes of the same name.
func List() ([]Recipe, error) {
	seen := make(map[string]bool)
	var recipes []Recipe

	for _, dir := range SearchPaths() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), recipeExt) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			r, err := loadFile(path)
			if err != nil {
				continue
			}
			if seen[r.Name] {
				continue
			}
			seen[r.Name] = true
			recipes = append(recipes, *r)
		}
	}

	sort.Slice(recipes, func(i, j int) bool { return recipes[i].Name < recipes[j].Name })
	return recipes, nil
}

// LoadByName finds and parses the first recipe named name across the
// search paths.
func LoadByName(name string) (*Recipe, error) {
	for _, dir := range SearchPaths() {
		path := filepath.Join(dir, name+recipeExt)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return loadFile(path)
	}
	return nil, fmt.Errorf("recipe %q not found in %s", name, strings.Join(SearchPaths(), ", "))
}

func loadFile(path string) (*Recipe, error) {
	var r Recipe
	if _, err := toml.DecodeFile(path, &r); err != nil {
		return nil, fmt.Errorf("parsing recipe %s: %w", path, err)
	}
	if r.Name == "" {
		r.Name = strings.TrimSuffix(filepath.Base(path), recipeExt)
	}
	r.Source = path
	return &r, nil
}

// Create writes a new recipe skeleton to the project recipe directory
// (.kg/recipes/<name>.toml), creating the directory if needed.
func Create(name, description string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("recipe name must not be empty")
	}
	dir := SearchPaths()[0]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating recipe dir: %w", err)
	}

	path := filepath.Join(dir, name+recipeExt)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("recipe %q already exists at %s", name, path)
	}

	r := Recipe{
		Name:        name,
		Description: description,
		Steps: []Step{
			{Name: "example-step", Command: "echo hello"},
		},
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating recipe file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("writing recipe file: %w", err)
	}

	return path, nil
}
