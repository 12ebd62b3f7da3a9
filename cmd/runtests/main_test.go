// Package main tests for the runtests CLI entry point.
package main

import (
	"os/exec"
	"strings"
	"testing"
)

// TestMain_BuildVerification verifies the binary builds successfully.
func TestMain_BuildVerification(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("go", "build", "-o", "/dev/null", ".")
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to build main package: %v", err)
	}
}

// TestMain_HelpFlag verifies --help documents the exit codes.
func TestMain_HelpFlag(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("go", "run", ".", "--help")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("--help failed: %v\noutput: %s", err, out)
	}
	if !strings.Contains(string(out), "Exit codes:") {
		t.Errorf("--help output missing exit codes:\n%s", out)
	}
}

// TestMain_VersionFlag verifies the --version flag works correctly.
func TestMain_VersionFlag(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("go", "run", ".", "--version")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("--version failed: %v\noutput: %s", err, out)
	}
	if !strings.Contains(string(out), "runtests") {
		t.Errorf("--version = %q", out)
	}
}

// TestMain_ConfigErrorExitCode verifies a bad flag exits with the config error code.
func TestMain_ConfigErrorExitCode(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("go", "run", ".", "--parallel", "none")
	out, _ := cmd.CombinedOutput()
	// go run reports the child's exit status on its own stderr, as "exit status 2".
	if !strings.Contains(string(out), "exit status 2") {
		t.Errorf("expected exit status 2, got:\n%s", out)
	}
}
