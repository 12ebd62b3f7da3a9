// Package report writes the machine-readable summary of a harness run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/emberjson/runtests/internal/aggregate"
)

// Meta describes the invocation a report belongs to.
type Meta struct {
	RunID      string
	Toolchain  string
	Command    string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// Document is the serialized form of a run.
type Document struct {
	RunID      string     `json:"run_id" yaml:"run_id"`
	Toolchain  string     `json:"toolchain" yaml:"toolchain"`
	Command    string     `json:"command" yaml:"command"`
	Root       string     `json:"root" yaml:"root"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time  `json:"finished_at" yaml:"finished_at"`
	DurationMS int64      `json:"duration_ms" yaml:"duration_ms"`
	Success    bool       `json:"success" yaml:"success"`
	Runs       int        `json:"runs" yaml:"runs"`
	Passed     int        `json:"passed" yaml:"passed"`
	Total      int        `json:"total_tests" yaml:"total_tests"`
	Failed     []string   `json:"failed" yaml:"failed"`
	Artifacts  []Artifact `json:"artifacts" yaml:"artifacts"`
}

// Artifact is the serialized outcome of one artifact.
type Artifact struct {
	Path       string `json:"path" yaml:"path"`
	Verdict    string `json:"verdict" yaml:"verdict"`
	Count      int    `json:"count" yaml:"count"`
	ExitCode   int    `json:"exit_code" yaml:"exit_code"`
	DurationMS int64  `json:"duration_ms" yaml:"duration_ms"`
	Reason     string `json:"reason,omitempty" yaml:"reason,omitempty"`
	TimedOut   bool   `json:"timed_out,omitempty" yaml:"timed_out,omitempty"`
	Stdout     string `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty" yaml:"stderr,omitempty"`
}

// Build converts an aggregate report into its serialized form.
// Captured output is stripped of ANSI escape sequences.
func Build(r *aggregate.Report, meta Meta) *Document {
	doc := &Document{
		RunID:      meta.RunID,
		Toolchain:  meta.Toolchain,
		Command:    meta.Command,
		Root:       meta.Root,
		StartedAt:  meta.StartedAt.UTC(),
		FinishedAt: meta.FinishedAt.UTC(),
		DurationMS: r.Duration.Milliseconds(),
		Success:    r.Success(),
		Runs:       r.Runs,
		Passed:     r.Passed,
		Total:      r.Total,
		Failed:     r.FailedPaths(),
		Artifacts:  make([]Artifact, 0, len(r.Results)),
	}

	for _, e := range r.Results {
		doc.Artifacts = append(doc.Artifacts, Artifact{
			Path:       e.Path,
			Verdict:    e.Verdict.String(),
			Count:      e.Count,
			ExitCode:   e.ExitCode,
			DurationMS: e.Duration.Milliseconds(),
			Reason:     stripansi.Strip(e.Reason),
			TimedOut:   e.TimedOut,
			Stdout:     stripansi.Strip(e.Stdout),
			Stderr:     stripansi.Strip(e.Stderr),
		})
	}

	return doc
}

// Marshal encodes doc in the format implied by path's extension.
func Marshal(doc *Document, path string) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case ".yaml", ".yml":
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported report format %q (use .json, .yaml or .yml)", ext)
	}
}

// Write builds the report document and writes it to path, creating parent directories.
func Write(path string, r *aggregate.Report, meta Meta) error {
	data, err := Marshal(Build(r, meta), path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
