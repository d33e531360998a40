package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/raffopazzo/depc-sub002/internal/config"
)

// LanguageServer serves diagnostics, hover, definitions, completion and
// formatting for depc documents over JSON-RPC.
type LanguageServer struct {
	documents map[string]*DocumentState // URI -> document state
	mu        sync.RWMutex
	writer    io.Writer
	writeMu   sync.Mutex
	settings  config.Settings
	logger    *slog.Logger
	exited    bool
}

func NewLanguageServer(writer io.Writer, settings config.Settings, logger *slog.Logger) *LanguageServer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LanguageServer{
		documents: make(map[string]*DocumentState),
		writer:    writer,
		settings:  settings,
		logger:    logger,
	}
}

// baseMessage is the part of every JSON-RPC message needed to dispatch it.
type baseMessage struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Start reads Content-Length framed messages from r until EOF or an exit notification.
func (s *LanguageServer) Start(r io.Reader) {
	reader := bufio.NewReader(r)
	for !s.exited {
		contentLength := -1
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					s.logger.Error("reading header", "err", err)
				}
				return
			}
			line = strings.TrimRight(line, "\r\n")
			if line == "" {
				if contentLength >= 0 {
					break
				}
				continue
			}
			if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
				n, err := strconv.Atoi(v)
				if err != nil {
					s.logger.Error("parsing Content-Length", "err", err)
					continue
				}
				contentLength = n
			}
		}

		content := make([]byte, contentLength)
		if _, err := io.ReadFull(reader, content); err != nil {
			s.logger.Error("reading content", "err", err)
			return
		}
		if err := s.handleMessage(content); err != nil {
			s.logger.Error("handling message", "err", err)
		}
	}
}

func (s *LanguageServer) handleMessage(content []byte) error {
	var msg baseMessage
	if err := json.Unmarshal(content, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	s.logger.Debug("received message", "method", msg.Method, "id", msg.ID)

	// Requests carry an ID, notifications do not.
	if msg.ID != nil {
		return s.handleRequest(msg)
	}
	return s.handleNotification(msg)
}

func (s *LanguageServer) handleRequest(msg baseMessage) error {
	switch msg.Method {
	case "initialize":
		var params InitializeParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleInitialize(msg.ID, params)

	case "shutdown":
		return s.handleShutdown(msg.ID)

	case "textDocument/hover":
		var params HoverParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleHover(msg.ID, params)

	case "textDocument/definition":
		var params DefinitionParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDefinition(msg.ID, params)

	case "textDocument/completion":
		var params CompletionParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleCompletion(msg.ID, params)

	case "textDocument/formatting":
		var params DocumentFormattingParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleFormatting(msg.ID, params)

	default:
		return s.sendResponse(ResponseMessage{
			Jsonrpc: "2.0",
			ID:      msg.ID,
			Error: &Error{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", msg.Method),
			},
		})
	}
}

func (s *LanguageServer) handleNotification(msg baseMessage) error {
	switch msg.Method {
	case "initialized":
		return nil

	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidOpen(params)

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidChange(params)

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return err
		}
		return s.handleDidClose(params)

	case "exit":
		s.exited = true
		return nil

	default:
		return nil
	}
}

func (s *LanguageServer) sendResponse(response ResponseMessage) error {
	return s.sendMessage(response)
}

func (s *LanguageServer) sendNotification(notification NotificationMessage) error {
	return s.sendMessage(notification)
}

func (s *LanguageServer) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}
