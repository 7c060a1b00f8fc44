package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunCompilesStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-"}, strings.NewReader("[-]"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr: %s)", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "int main(void)") {
		t.Fatalf("expected compiled C on stdout, got:\n%s", stdout.String())
	}
}

func TestRunReportsParseErrorExitCode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-"}, strings.NewReader("]"), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "unmatched") {
		t.Fatalf("expected parse error message, got:\n%s", stderr.String())
	}
}

func TestRunHandlesCellSizeFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-s", "32", "-"}, strings.NewReader("+"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr: %s)", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "uint32_t") {
		t.Fatalf("expected uint32_t tape, got:\n%s", stdout.String())
	}
}

func TestRunRejectsInvalidCellSize(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-s", "64", "-"}, strings.NewReader("+"), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-h"}, strings.NewReader(""), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(stdout.String(), "Usage:") {
		t.Fatalf("expected usage text, got:\n%s", stdout.String())
	}
}
