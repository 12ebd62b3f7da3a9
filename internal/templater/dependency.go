package templater

import (
	"strings"

	"github.com/emberjson/runtests/internal/errors"
)

// DependencyIndent is the indentation of dependency lines in the recipe.
const DependencyIndent = "    "

// Dependency is one entry of the [dependencies] table.
type Dependency struct {
	Name       string
	Constraint string // e.g. ">=24.6", "<1.0", "0.7.2"
}

// SplitConstraint separates the comparison operator from the version.
// A leading "<=" or ">=" is a two-character operator, a single "<" or ">"
// is itself, and anything else is an exact "==" match.
func SplitConstraint(constraint string) (op, version string, err error) {
	if constraint == "" {
		return "", "", errors.Config("empty version constraint")
	}

	op, version = "==", constraint
	if c := constraint[0]; c == '<' || c == '>' {
		if len(constraint) > 1 && constraint[1] == '=' {
			op, version = constraint[:2], constraint[2:]
		} else {
			op, version = constraint[:1], constraint[1:]
		}
	}

	if version == "" {
		return "", "", errors.Configf("constraint %q has an operator but no version", constraint)
	}
	return op, version, nil
}

// Line renders the dependency as "<indent>- <name> <operator><version>".
func (d Dependency) Line(indent string) (string, error) {
	op, version, err := SplitConstraint(d.Constraint)
	if err != nil {
		return "", errors.Configf("dependency %q: %v", d.Name, err)
	}
	return indent + "- " + d.Name + " " + op + version, nil
}

// RenderDependencies renders one line per dependency, in order, joined by newlines.
func RenderDependencies(deps []Dependency, indent string) (string, error) {
	lines := make([]string, 0, len(deps))
	for _, d := range deps {
		line, err := d.Line(indent)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
