package main

import (
	"path/filepath"

	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/pipeline"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

func (s *LanguageServer) publishDiagnostics(uri string, finalCtx *pipeline.PipelineContext) error {
	return s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: convertDiagnostics(finalCtx.Errors, uri, finalCtx.SourceCode),
		},
	})
}

// convertDiagnostics turns errors of the document at uri into LSP
// diagnostics. Reasons become related information pointing into the same
// document.
func convertDiagnostics(errs []*diagnostics.Error, uri, content string) []Diagnostic {
	result := make([]Diagnostic, 0, len(errs))
	target := filepath.Clean(uriToPath(uri))
	for _, err := range errs {
		if err.File != "" && filepath.Clean(err.File) != target {
			continue
		}
		d := Diagnostic{
			Range:    posRange(content, err.Pos),
			Severity: SeverityError,
			Code:     string(err.Code),
			Message:  err.Message,
			Source:   "depc",
		}
		for _, r := range flattenReasons(err.Reasons) {
			d.RelatedInformation = append(d.RelatedInformation, DiagnosticRelatedInformation{
				Location: Location{URI: uri, Range: posRange(content, r.Pos)},
				Message:  r.Message,
			})
		}
		result = append(result, d)
	}
	return result
}

func flattenReasons(reasons []*diagnostics.Error) []*diagnostics.Error {
	var out []*diagnostics.Error
	for _, r := range reasons {
		out = append(out, r)
		out = append(out, flattenReasons(r.Reasons)...)
	}
	return out
}

// posRange covers the word starting at pos, or a single character.
func posRange(content string, pos token.Pos) Range {
	if !pos.IsValid() {
		return Range{}
	}
	start := Position{Line: pos.Line - 1, Character: pos.Column - 1}
	end := start
	end.Character += max(1, len(getWordAtPosition(content, start.Line, start.Character)))
	return Range{Start: start, End: end}
}
