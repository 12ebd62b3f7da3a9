package templater

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// PlaceholderContext provides values for placeholder resolution.
type PlaceholderContext struct {
	Manifest *Manifest
	RepoDir  string // Slash-separated; {{PREFIX}} is RepoDir + "/output"
}

// PlaceholderFunc is a function that resolves a placeholder value.
type PlaceholderFunc func(ctx *PlaceholderContext) (string, error)

// builtinPlaceholders defines the recipe placeholders.
var builtinPlaceholders = map[string]PlaceholderFunc{
	"NAME":         projectField(func(p Project) string { return p.Name }),
	"DESCRIPTION":  projectField(func(p Project) string { return p.Description }),
	"LICENSE":      projectField(func(p Project) string { return p.License }),
	"LICENSE_FILE": projectField(func(p Project) string { return p.LicenseFile }),
	"HOMEPAGE":     projectField(func(p Project) string { return p.Homepage }),
	"REPOSITORY":   projectField(func(p Project) string { return p.Repository }),
	"VERSION":      projectField(func(p Project) string { return p.Version }),
	"PREFIX":       resolvePrefix,
	"DEPENDENCIES": resolveDependencies,
}

var placeholderRe = regexp.MustCompile(`\{\{([A-Z][A-Z0-9_]*)\}\}`)

// ResolvePlaceholders replaces every known {{TOKEN}} in template in a single pass,
// so substituted values are never rescanned. Unknown tokens are left in place and
// returned as warnings.
func ResolvePlaceholders(template string, ctx *PlaceholderContext) (string, []string, error) {
	var firstErr error
	result := placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		resolver, ok := builtinPlaceholders[name]
		if !ok || firstErr != nil {
			return match
		}
		value, err := resolver(ctx)
		if err != nil {
			firstErr = fmt.Errorf("placeholder {{%s}}: %w", name, err)
			return match
		}
		return value
	})
	if firstErr != nil {
		return "", nil, firstErr
	}

	var warnings []string
	for _, unknown := range findUnknownPlaceholders(template) {
		warnings = append(warnings, fmt.Sprintf("unknown placeholder {{%s}} in template", unknown))
	}

	return result, warnings, nil
}

// findUnknownPlaceholders finds placeholders that have no resolver.
func findUnknownPlaceholders(content string) []string {
	var unknowns []string
	for _, name := range ListPlaceholders(content) {
		if _, isBuiltin := builtinPlaceholders[name]; !isBuiltin {
			unknowns = append(unknowns, name)
		}
	}
	return unknowns
}

// ListPlaceholders returns all placeholder names used in a template, in first-use order.
func ListPlaceholders(template string) []string {
	matches := placeholderRe.FindAllStringSubmatch(template, -1)

	var names []string
	seen := make(map[string]bool)
	for _, match := range matches {
		name := match[1]
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	return names
}

func projectField(get func(Project) string) PlaceholderFunc {
	return func(ctx *PlaceholderContext) (string, error) {
		return get(ctx.Manifest.Project), nil
	}
}

func resolvePrefix(ctx *PlaceholderContext) (string, error) {
	return path.Join(strings.TrimSuffix(ctx.RepoDir, "/"), "output"), nil
}

func resolveDependencies(ctx *PlaceholderContext) (string, error) {
	return RenderDependencies(ctx.Manifest.Dependencies, DependencyIndent)
}
