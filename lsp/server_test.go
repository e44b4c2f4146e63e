package lsp

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/bennu/ebnf"
	"github.com/dhamidi/bennu/text"
)

const listGrammar = `
	List = "[" [ item { "," item } ] "]" .
	item = letter { letter } .
	letter = "a" … "z" .
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	g, err := ebnf.Read("list.ebnf", strings.NewReader(listGrammar))
	if err != nil {
		t.Fatalf("parse grammar: %v", err)
	}
	compiled, err := ebnf.Compile(g, ebnf.WithSkip(text.Spaces))
	if err != nil {
		t.Fatalf("compile grammar: %v", err)
	}
	return NewServer(compiled, "List", "test")
}

type notification struct {
	method string
	params protocol.PublishDiagnosticsParams
}

func recordingContext(sent *[]notification) *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			*sent = append(*sent, notification{method: method, params: params.(protocol.PublishDiagnosticsParams)})
		},
	}
}

func TestDiagnose(t *testing.T) {
	ls := newTestServer(t)

	if got := ls.Diagnose("file:///tmp/a.list", "[ab, c]"); len(got) != 0 {
		t.Errorf("valid document: got diagnostics %v", got)
	}

	got := ls.Diagnose("file:///tmp/a.list", "[ab,\n c d]")
	want := []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 1, Character: 3},
			End:   protocol.Position{Line: 1, Character: 4},
		},
		Severity: severityPtr(protocol.DiagnosticSeverityError),
		Source:   stringPtr("bennu"),
		Message:  `expected "]", found 'd'`,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
}

func TestDiagnoseCountsUTF16(t *testing.T) {
	ls := newTestServer(t)

	got := ls.Diagnose("file:///tmp/a.list", "[😀]")
	want := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 1},
		End:   protocol.Position{Line: 0, Character: 3},
	}
	if len(got) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(got))
	}
	if diff := cmp.Diff(want, got[0].Range); diff != "" {
		t.Errorf("range mismatch (-want +got):\n%s", diff)
	}
}

func TestProtocolPosition(t *testing.T) {
	tests := []struct {
		content string
		offset  int
		want    protocol.Position
		width   protocol.UInteger
	}{
		{"ab", 1, protocol.Position{Line: 0, Character: 1}, 1},
		{"a\nbc", 3, protocol.Position{Line: 1, Character: 1}, 1},
		{"😀x", 1, protocol.Position{Line: 0, Character: 2}, 1},
		{"x😀", 1, protocol.Position{Line: 0, Character: 1}, 2},
		{"é\n😀é", 3, protocol.Position{Line: 1, Character: 2}, 1},
		{"ab", 2, protocol.Position{Line: 0, Character: 2}, 1},
	}
	for _, tt := range tests {
		got, width := protocolPosition(tt.content, tt.offset)
		if got != tt.want || width != tt.width {
			t.Errorf("protocolPosition(%q, %d) = %+v, %d; want %+v, %d", tt.content, tt.offset, got, width, tt.want, tt.width)
		}
	}
}

func TestDocumentLifecycle(t *testing.T) {
	ls := newTestServer(t)
	var sent []notification
	ctx := recordingContext(&sent)
	uri := "file:///tmp/b.list"

	err := ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "[a"},
	})
	if err != nil {
		t.Fatalf("did open: %v", err)
	}
	err = ls.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "[a]"}},
	})
	if err != nil {
		t.Fatalf("did change: %v", err)
	}
	err = ls.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatalf("did save: %v", err)
	}
	err = ls.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	if err != nil {
		t.Fatalf("did close: %v", err)
	}

	counts := make([]int, len(sent))
	for i, n := range sent {
		if n.method != string(protocol.ServerTextDocumentPublishDiagnostics) {
			t.Errorf("notification %d: method %q", i, n.method)
		}
		if n.params.URI != uri {
			t.Errorf("notification %d: uri %q", i, n.params.URI)
		}
		counts[i] = len(n.params.Diagnostics)
	}
	if diff := cmp.Diff([]int{1, 0, 0, 0}, counts); diff != "" {
		t.Errorf("diagnostic counts mismatch (-want +got):\n%s", diff)
	}
	if _, open := ls.docs[uri]; open {
		t.Error("closed document is still tracked")
	}
}

func TestInitialize(t *testing.T) {
	ls := newTestServer(t)
	result, err := ls.initialize(&glsp.Context{}, &protocol.InitializeParams{})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	res := result.(protocol.InitializeResult)
	if res.ServerInfo == nil || res.ServerInfo.Name != "bennu" {
		t.Errorf("server info = %+v", res.ServerInfo)
	}
	syncOpts, ok := res.Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	if !ok || syncOpts.Change == nil || *syncOpts.Change != protocol.TextDocumentSyncKindFull {
		t.Errorf("text document sync = %+v", res.Capabilities.TextDocumentSync)
	}
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"file:///tmp/x.list", "/tmp/x.list"},
		{"untitled:1", "untitled:1"},
	}
	for _, tt := range tests {
		got, err := uriToPath(tt.uri)
		if err != nil || got != tt.want {
			t.Errorf("uriToPath(%q) = %q, %v; want %q", tt.uri, got, err, tt.want)
		}
	}
}
