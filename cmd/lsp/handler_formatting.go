package main

import (
	"strings"

	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
)

// handleFormatting replaces the whole document with its canonical form.
// Documents that do not parse are left alone.
func (s *LanguageServer) handleFormatting(id interface{}, params DocumentFormattingParams) error {
	content, finalCtx, ok := s.document(params.TextDocument.URI)
	if !ok || finalCtx.Module == nil || hasParseErrors(finalCtx.Errors) {
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: []TextEdit{}})
	}

	formatted := prettyprinter.Module(finalCtx.Module)
	if formatted == content {
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: []TextEdit{}})
	}
	lastLine := strings.Count(content, "\n")
	edit := TextEdit{
		Range: Range{
			Start: Position{Line: 0, Character: 0},
			End:   Position{Line: lastLine, Character: len(getLine(content, lastLine))},
		},
		NewText: formatted,
	}
	return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: []TextEdit{edit}})
}
