package main

// handleDefinition jumps to the declaration of the global under the cursor.
// Prelude symbols have no location in the workspace.
func (s *LanguageServer) handleDefinition(id interface{}, params DefinitionParams) error {
	uri := params.TextDocument.URI
	content, finalCtx, ok := s.document(uri)
	if !ok || finalCtx.Env == nil {
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
	}
	word := getWordAtPosition(content, params.Position.Line, params.Position.Character)
	g, sym, found := finalCtx.Env.Lookup(word)
	if word == "" || !found || g.Imported || !sym.Pos.IsValid() {
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
	}
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  Location{URI: uri, Range: posRange(content, sym.Pos)},
	})
}
