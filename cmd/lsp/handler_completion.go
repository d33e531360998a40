package main

import (
	"github.com/raffopazzo/depc-sub002/internal/pipeline"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
	"github.com/raffopazzo/depc-sub002/internal/symbols"
	"github.com/raffopazzo/depc-sub002/internal/token"
)

func (s *LanguageServer) handleCompletion(id interface{}, params CompletionParams) error {
	_, finalCtx, ok := s.document(params.TextDocument.URI)
	items := []CompletionItem{}
	if ok {
		items = completionItems(finalCtx)
	}
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  CompletionList{IsIncomplete: false, Items: items},
	})
}

// completionItems offers every keyword and every global visible in the
// document, module symbols first.
func completionItems(ctx *pipeline.PipelineContext) []CompletionItem {
	var items []CompletionItem
	seen := make(map[string]bool)
	if ctx.Env != nil {
		for _, imported := range []bool{false, true} {
			for g, sym := range ctx.Env.Entries() {
				if g.Imported != imported || seen[g.Name] {
					continue
				}
				seen[g.Name] = true
				item := CompletionItem{Label: g.Name, Kind: completionKind(sym.Kind), Detail: sym.Kind.String()}
				if sym.IsCallable() {
					item.Detail = prettyprinter.Expr(sym.Type)
				}
				items = append(items, item)
			}
		}
	}
	for _, kw := range token.Keywords() {
		if !seen[kw] {
			items = append(items, CompletionItem{Label: kw, Kind: CompletionItemKeyword})
		}
	}
	return items
}

func completionKind(k symbols.SymbolKind) CompletionItemKind {
	switch k {
	case symbols.StructSymbol, symbols.IncompleteTypeSymbol:
		return CompletionItemStruct
	case symbols.AxiomSymbol:
		return CompletionItemConstant
	}
	return CompletionItemFunction
}
