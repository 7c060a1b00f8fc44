package repl

import (
	"bytes"
	"strings"
	"testing"
)

func TestReplEchoesCompiledOutput(t *testing.T) {
	var out bytes.Buffer
	Start(strings.NewReader("[-]\n"), &out)

	if !strings.Contains(out.String(), "int main(void)") {
		t.Fatalf("expected compiled C in output, got:\n%s", out.String())
	}
}

func TestReplReportsParseErrors(t *testing.T) {
	var out bytes.Buffer
	Start(strings.NewReader("]\n"), &out)

	if !strings.Contains(out.String(), "unmatched") {
		t.Fatalf("expected a parse error message, got:\n%s", out.String())
	}
}
