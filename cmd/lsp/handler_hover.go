package main

import (
	"fmt"
	"strings"

	"github.com/raffopazzo/depc-sub002/internal/ast"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
)

// handleHover shows the declaration of the global under the cursor.
func (s *LanguageServer) handleHover(id interface{}, params HoverParams) error {
	content, finalCtx, ok := s.document(params.TextDocument.URI)
	if !ok || finalCtx.Env == nil {
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
	}
	word := getWordAtPosition(content, params.Position.Line, params.Position.Character)
	g, sym, found := finalCtx.Env.Lookup(word)
	if word == "" || !found {
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
	}

	var b strings.Builder
	b.WriteString("```depc\n")
	b.WriteString(declarationText(g.Name, sym))
	b.WriteString("\n```")
	if g.Imported {
		b.WriteString("\n\nfrom the prelude")
	}
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  Hover{Contents: MarkupContent{Kind: "markdown", Value: b.String()}},
	})
}

// declarationText renders sym as the declaration that introduced it.
func declarationText(name string, sym symbols.Symbol) string {
	var d ast.Decl
	switch sym.Kind {
	case symbols.StructSymbol:
		d = ast.StructDef{Name: name, Fields: sym.Fields}
	case symbols.IncompleteTypeSymbol:
		return fmt.Sprintf("struct %s; // incomplete", name)
	case symbols.AxiomSymbol:
		d = ast.Axiom{Name: name, Sig: sym.Type}
	case symbols.ExternSymbol:
		d = ast.Extern{Name: name, Sig: sym.Type}
	default:
		d = ast.FuncDecl{Name: name, Sig: sym.Type}
	}
	return strings.TrimRight(prettyprinter.Module(&ast.Module{Decls: []ast.Decl{d}}), "\n")
}

func hasParseErrors(errs []*diagnostics.Error) bool {
	for _, e := range errs {
		if strings.HasPrefix(string(e.Code), "P") {
			return true
		}
	}
	return false
}
