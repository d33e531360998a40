package main

func (s *LanguageServer) handleInitialize(id interface{}, params InitializeParams) error {
	root := ""
	if params.RootURI != nil {
		root = *params.RootURI
	} else if params.RootPath != nil {
		root = *params.RootPath
	}
	s.logger.Debug("initialize", "id", id, "root", root)
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0",
		ID:      id,
		Result: InitializeResult{
			Capabilities: ServerCapabilities{
				TextDocumentSync:           1, // Full sync
				HoverProvider:              true,
				DefinitionProvider:         true,
				CompletionProvider:         &CompletionOptions{TriggerCharacters: []string{"."}},
				DocumentFormattingProvider: true,
			},
		},
	})
}

func (s *LanguageServer) handleShutdown(id interface{}) error {
	return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
}
