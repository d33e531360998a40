package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/raffopazzo/depc-sub002/internal/analyzer"
	"github.com/raffopazzo/depc-sub002/internal/lexer"
	"github.com/raffopazzo/depc-sub002/internal/parser"
	"github.com/raffopazzo/depc-sub002/internal/pipeline"
)

// DocumentState stores the state of a single open document
type DocumentState struct {
	Content string                    // Current file content
	Context *pipeline.PipelineContext // Result of the last analysis
	Mu      sync.RWMutex
}

func (s *LanguageServer) handleDidOpen(params DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	finalCtx := s.analyzeDocument(params.TextDocument.Text, uri)

	s.mu.Lock()
	s.documents[uri] = &DocumentState{Content: params.TextDocument.Text, Context: finalCtx}
	s.mu.Unlock()

	s.logger.Debug("opened document", "uri", uri)
	return s.publishDiagnostics(uri, finalCtx)
}

func (s *LanguageServer) handleDidChange(params DidChangeTextDocumentParams) error {
	// Full sync: the last change holds the whole document.
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI
	content := params.ContentChanges[len(params.ContentChanges)-1].Text

	s.mu.RLock()
	docState, exists := s.documents[uri]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("document %s not found", uri)
	}

	finalCtx := s.analyzeDocument(content, uri)
	docState.Mu.Lock()
	docState.Content = content
	docState.Context = finalCtx
	docState.Mu.Unlock()

	s.logger.Debug("changed document", "uri", uri)
	return s.publishDiagnostics(uri, finalCtx)
}

func (s *LanguageServer) handleDidClose(params DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()
	// Clear the diagnostics of the closed document.
	return s.publishDiagnostics(params.TextDocument.URI, &pipeline.PipelineContext{})
}

// document returns the last analysis of uri.
func (s *LanguageServer) document(uri string) (string, *pipeline.PipelineContext, bool) {
	s.mu.RLock()
	docState, exists := s.documents[uri]
	s.mu.RUnlock()
	if !exists {
		return "", nil, false
	}
	docState.Mu.RLock()
	defer docState.Mu.RUnlock()
	return docState.Content, docState.Context, docState.Context != nil
}

func (s *LanguageServer) analyzeDocument(content string, uri string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(content)
	ctx.FilePath = uriToPath(uri)
	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{Settings: s.settings, Logger: s.logger.With("uri", uri)},
	)
	return p.Run(ctx)
}

func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
