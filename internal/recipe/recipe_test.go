package recipe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeRecipe(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+recipeExt), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListFindsProjectRecipes(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	t.Setenv("HOME", t.TempDir())

	writeRecipe(t, filepath.Join(tmp, ".kg", "recipes"), "deploy", `
name = "deploy"
description = "Deploy the site"

[[steps]]
name = "build"
command = "echo building"
`)

	recipes, err := List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recipes) != 1 || recipes[0].Name != "deploy" {
		t.Fatalf("expected one 'deploy' recipe, got %+v", recipes)
	}
	if len(recipes[0].Steps) != 1 || recipes[0].Steps[0].Command != "echo building" {
		t.Errorf("unexpected steps: %+v", recipes[0].Steps)
	}
}

func TestListProjectShadowsUser(t *testing.T) {
	tmp := t.TempDir()
	home := t.TempDir()
	t.Chdir(tmp)
	t.Setenv("HOME", home)

	writeRecipe(t, filepath.Join(tmp, ".kg", "recipes"), "shared", `name = "shared"
description = "project version"
`)
	writeRecipe(t, filepath.Join(home, ".kg", "recipes"), "shared", `name = "shared"
description = "user version"
`)

	recipes, err := List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("expected shadowing to collapse to 1 recipe, got %d", len(recipes))
	}
	if recipes[0].Description != "project version" {
		t.Errorf("expected project recipe to shadow user recipe, got %q", recipes[0].Description)
	}
}

func TestLoadByNameNotFound(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	t.Setenv("HOME", t.TempDir())

	if _, err := LoadByName("nonexistent"); err == nil {
		t.Error("expected an error for a missing recipe")
	}
}

func TestCreateWritesSkeleton(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	t.Setenv("HOME", t.TempDir())

	path, err := Create("my-recipe", "does a thing")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected recipe file to exist: %v", err)
	}

	r, err := LoadByName("my-recipe")
	if err != nil {
		t.Fatalf("LoadByName() error = %v", err)
	}
	if r.Description != "does a thing" || len(r.Steps) != 1 {
		t.Errorf("unexpected loaded recipe: %+v", r)
	}
}

func TestCreateRejectsDuplicate(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	t.Setenv("HOME", t.TempDir())

	if _, err := Create("dup", "first"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := Create("dup", "second"); err == nil {
		t.Error("expected an error creating a duplicate recipe")
	}
}

func TestRunExecutesStepsInOrder(t *testing.T) {
	r := &Recipe{
		Name: "seq",
		Steps: []Step{
			{Name: "one", Command: "exit 0"},
			{Name: "two", Command: "exit 0"},
		},
	}
	results, err := Run(context.Background(), r)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 step results, got %d", len(results))
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	r := &Recipe{
		Name: "fail",
		Steps: []Step{
			{Name: "bad", Command: "exit 1"},
			{Name: "never", Command: "exit 0"},
		},
	}
	results, err := Run(context.Background(), r)
	if err == nil {
		t.Fatal("expected Run() to return an error")
	}
	if len(results) != 1 {
		t.Errorf("expected to stop after the failing step, got %d results", len(results))
	}
}
