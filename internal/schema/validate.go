// Package schema provides JSON schema validation for runtests configuration files.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	schemafs "github.com/emberjson/runtests/schema"
)

// Schema file names inside the embedded FS.
const (
	configSchemaName  = "config.schema.json"
	projectSchemaName = "project.schema.json"
)

var (
	configSchema  *jsonschema.Schema
	projectSchema *jsonschema.Schema
	compileOnce   sync.Once
	compileErr    error
)

// compileSchemas compiles all embedded schemas once.
func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		for _, name := range []string{configSchemaName, projectSchemaName} {
			data, err := schemafs.FS.ReadFile(name)
			if err != nil {
				compileErr = fmt.Errorf("read %s: %w", name, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
			if err != nil {
				compileErr = fmt.Errorf("unmarshal %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, doc); err != nil {
				compileErr = fmt.Errorf("add %s resource: %w", name, err)
				return
			}
		}

		var err error
		if configSchema, err = compiler.Compile(configSchemaName); err != nil {
			compileErr = fmt.Errorf("compile config schema: %w", err)
			return
		}
		if projectSchema, err = compiler.Compile(projectSchemaName); err != nil {
			compileErr = fmt.Errorf("compile project schema: %w", err)
			return
		}
	})

	return compileErr
}

// ValidateConfig validates runtests.json data against the config schema.
func ValidateConfig(data []byte) error {
	return validate(data, func() *jsonschema.Schema { return configSchema }, "config")
}

// ValidateProject validates JSON-encoded recipe project metadata against the project schema.
func ValidateProject(data []byte) error {
	return validate(data, func() *jsonschema.Schema { return projectSchema }, "project")
}

func validate(data []byte, schema func() *jsonschema.Schema, what string) error {
	if err := compileSchemas(); err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := schema().Validate(v); err != nil {
		return fmt.Errorf("%s validation failed: %w", what, err)
	}

	return nil
}
