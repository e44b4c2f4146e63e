// Package lsp provides a language server that checks documents against a
// compiled EBNF grammar and publishes the parse errors as diagnostics.
package lsp

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/bennu/ebnf"
	"github.com/dhamidi/bennu/parse"
	"github.com/dhamidi/bennu/text"
)

const lsName = "bennu"

// Server checks open documents against a grammar.
type Server struct {
	grammar *ebnf.Grammar
	start   string
	version string
	handler protocol.Handler
	server  *server.Server
	log     commonlog.Logger

	mu   sync.Mutex
	docs map[protocol.DocumentUri]string
}

// NewServer returns a server that parses documents from the production start.
func NewServer(g *ebnf.Grammar, start, version string) *Server {
	ls := &Server{
		grammar: g,
		start:   start,
		version: version,
		log:     commonlog.GetLogger("bennu.lsp"),
		docs:    make(map[protocol.DocumentUri]string),
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

// RunStdio serves the protocol over standard input and output.
func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

// Diagnose parses content and returns one diagnostic per failure.
func (ls *Server) Diagnose(uri protocol.DocumentUri, content string) []protocol.Diagnostic {
	filename, err := uriToPath(uri)
	if err != nil {
		filename = uri
	}

	_, err = ls.grammar.Parse(filename, ls.start, content)
	if err == nil {
		return []protocol.Diagnostic{}
	}

	var (
		pos     = text.Start(filename)
		message = err.Error()
	)
	var pe parse.ParseError
	if errors.As(err, &pe) {
		if sp, ok := pe.Position().(text.SourcePosition); ok {
			pos = sp
		}
		message = pe.Message()
	}

	start, width := protocolPosition(content, pos.Index)
	end := start
	end.Character += width

	return []protocol.Diagnostic{{
		Range:    protocol.Range{Start: start, End: end},
		Severity: severityPtr(protocol.DiagnosticSeverityError),
		Source:   stringPtr(lsName),
		Message:  message,
	}}
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.log.Infof("checking documents from production %s", ls.start)
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(ctx, params.TextDocument.URI, textChange.Text)
		}
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.docs, params.TextDocument.URI)
	ls.mu.Unlock()

	ctx.Notify(string(protocol.ServerTextDocumentPublishDiagnostics), protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, *params.Text)
		return nil
	}

	ls.mu.Lock()
	content, ok := ls.docs[params.TextDocument.URI]
	ls.mu.Unlock()
	if ok {
		ls.publish(ctx, params.TextDocument.URI, content)
	}
	return nil
}

func (ls *Server) update(ctx *glsp.Context, uri protocol.DocumentUri, content string) {
	ls.mu.Lock()
	ls.docs[uri] = content
	ls.mu.Unlock()

	ls.publish(ctx, uri, content)
}

func (ls *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, content string) {
	diagnostics := ls.Diagnose(uri, content)
	ls.log.Debugf("%s: %d diagnostics", uri, len(diagnostics))

	ctx.Notify(string(protocol.ServerTextDocumentPublishDiagnostics), protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// protocolPosition converts a rune offset into content to a protocol position,
// whose character counts UTF-16 code units. width is the length in code units
// of the rune at offset, or 1 at the end of content.
func protocolPosition(content string, offset int) (pos protocol.Position, width protocol.UInteger) {
	i := 0
	for _, r := range content {
		if i == offset {
			return pos, protocol.UInteger(utf16.RuneLen(r))
		}
		i++
		if r == '\n' {
			pos.Line++
			pos.Character = 0
			continue
		}
		pos.Character += protocol.UInteger(utf16.RuneLen(r))
	}
	return pos, 1
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func stringPtr(s string) *string {
	return &s
}

func severityPtr(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
