package templater

import (
	"reflect"
	"testing"
)

func testContext() *PlaceholderContext {
	return &PlaceholderContext{
		Manifest: &Manifest{
			Project: Project{
				Name:        "emberjson",
				Description: "JSON for Mojo",
				License:     "Apache-2.0",
				LicenseFile: "LICENSE",
				Homepage:    "https://example.com",
				Repository:  "https://example.com/repo",
				Version:     "0.1.0",
			},
			Dependencies: []Dependency{{"max", ">=24.6"}},
		},
		RepoDir: "/src/emberjson",
	}
}

func TestResolvePlaceholders_AllBuiltins(t *testing.T) {
	template := "{{NAME}}|{{DESCRIPTION}}|{{LICENSE}}|{{LICENSE_FILE}}|{{HOMEPAGE}}|{{REPOSITORY}}|{{VERSION}}|{{PREFIX}}\n{{DEPENDENCIES}}"

	got, warnings, err := ResolvePlaceholders(template, testContext())
	if err != nil {
		t.Fatalf("ResolvePlaceholders() error = %v", err)
	}

	want := "emberjson|JSON for Mojo|Apache-2.0|LICENSE|https://example.com|https://example.com/repo|0.1.0|/src/emberjson/output\n    - max >=24.6"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestResolvePlaceholders_Repeated(t *testing.T) {
	got, _, err := ResolvePlaceholders("{{NAME}}-{{NAME}}", testContext())
	if err != nil {
		t.Fatal(err)
	}
	if got != "emberjson-emberjson" {
		t.Errorf("got %q", got)
	}
}

func TestResolvePlaceholders_ValuesNotRescanned(t *testing.T) {
	ctx := testContext()
	ctx.Manifest.Project.Description = "uses {{VERSION}} literally"

	got, _, err := ResolvePlaceholders("{{DESCRIPTION}}", ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != "uses {{VERSION}} literally" {
		t.Errorf("got %q", got)
	}
}

func TestResolvePlaceholders_UnknownLeftInPlace(t *testing.T) {
	got, warnings, err := ResolvePlaceholders("{{NAME}} {{CHANNEL}} {{CHANNEL}} {{ version }}", testContext())
	if err != nil {
		t.Fatal(err)
	}
	if got != "emberjson {{CHANNEL}} {{CHANNEL}} {{ version }}" {
		t.Errorf("got %q", got)
	}
	if want := []string{"unknown placeholder {{CHANNEL}} in template"}; !reflect.DeepEqual(warnings, want) {
		t.Errorf("warnings = %v, want %v", warnings, want)
	}
}

func TestResolvePlaceholders_DependencyError(t *testing.T) {
	ctx := testContext()
	ctx.Manifest.Dependencies = []Dependency{{"max", ""}}

	if _, _, err := ResolvePlaceholders("{{DEPENDENCIES}}", ctx); err == nil {
		t.Fatal("expected error for empty constraint")
	}

	// Unused placeholders are never resolved.
	if _, _, err := ResolvePlaceholders("{{NAME}}", ctx); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestListPlaceholders(t *testing.T) {
	got := ListPlaceholders("{{B}} {{A}} {{B}} {{a}} {{ C }}")
	want := []string{"B", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListPlaceholders() = %v, want %v", got, want)
	}
}

func TestFindUnknownPlaceholders(t *testing.T) {
	got := findUnknownPlaceholders("{{NAME}} {{FOO}} {{PREFIX}} {{BAR_2}}")
	want := []string{"FOO", "BAR_2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("findUnknownPlaceholders() = %v, want %v", got, want)
	}
}
