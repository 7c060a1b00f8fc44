package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"bfopt/internal/diag"
)

// ConvertParseError turns a bracket-mismatch ParseError into an LSP
// Diagnostic, grounded on kanso's ConvertParseErrors.
func ConvertParseError(err *diag.ParseError) protocol.Diagnostic {
	line := uint32(0)
	if err.Position.Line > 0 {
		line = uint32(err.Position.Line - 1)
	}
	col := uint32(0)
	if err.Position.Column > 0 {
		col = uint32(err.Position.Column - 1)
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("bfopt"),
		Message:  err.Message,
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }
func ptrString(s string) *string                                           { return &s }
func ptrBool(b bool) *bool                                                 { return &b }
