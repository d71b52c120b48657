package server

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const testURI = protocol.DocumentUri("file:///tmp/prog.bf")

func at(line, char int) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(char)}
}

// ---------------------------------------------------------------------------
// Document analysis
// ---------------------------------------------------------------------------

func TestAnalyzeBalanced(t *testing.T) {
	doc := analyze("+++[>++<-]\n.")
	if doc.err != nil {
		t.Fatalf("analyze error: %v", doc.err)
	}
	if len(doc.tokens) != 11 {
		t.Errorf("tokens = %d, want 11", len(doc.tokens))
	}
	if len(doc.runOf) != len(doc.tokens) {
		t.Errorf("runOf covers %d tokens, want %d", len(doc.runOf), len(doc.tokens))
	}
	if d := doc.diagnostics(); len(d) != 0 {
		t.Errorf("diagnostics = %v, want none", d)
	}
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantRange protocol.Range
		wantMsg   string
	}{
		{
			name:      "unclosed open",
			text:      "+\n [-",
			wantRange: protocol.Range{Start: at(1, 1), End: at(1, 2)},
			wantMsg:   "never closed",
		},
		{
			name:      "stray close",
			text:      "[-]\n\n  ]",
			wantRange: protocol.Range{Start: at(2, 2), End: at(2, 3)},
			wantMsg:   "no matching",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := analyze(tt.text).diagnostics()
			if len(diags) != 1 {
				t.Fatalf("diagnostics = %v, want 1", diags)
			}
			d := diags[0]
			if d.Range != tt.wantRange {
				t.Errorf("range = %+v, want %+v", d.Range, tt.wantRange)
			}
			if !strings.Contains(d.Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", d.Message, tt.wantMsg)
			}
			if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
				t.Error("severity should be Error")
			}
		})
	}
}

func TestTokenAt(t *testing.T) {
	doc := analyze("ab+ [\n]")
	tests := []struct {
		pos  protocol.Position
		want int
	}{
		{at(0, 0), -1}, // comment
		{at(0, 2), 0},  // on '+'
		{at(0, 3), 0},  // just after '+'
		{at(0, 4), 1},  // on '['
		{at(0, 5), 1},  // end of line after '['
		{at(1, 0), 2},  // on ']'
		{at(3, 0), -1}, // past the end
	}
	for _, tt := range tests {
		if got := doc.tokenAt(tt.pos); got != tt.want {
			t.Errorf("tokenAt(%d:%d) = %d, want %d", tt.pos.Line, tt.pos.Character, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Definition
// ---------------------------------------------------------------------------

func TestDefinitionJumpsToPartner(t *testing.T) {
	doc := analyze("+[\n  -\n]")

	loc := definition(doc, testURI, at(0, 1))
	if loc == nil {
		t.Fatal("definition on '[' returned nil")
	}
	if loc.URI != testURI {
		t.Errorf("URI = %q, want %q", loc.URI, testURI)
	}
	if loc.Range.Start != at(2, 0) {
		t.Errorf("'[' partner at %+v, want 2:0", loc.Range.Start)
	}

	loc = definition(doc, testURI, at(2, 0))
	if loc == nil || loc.Range.Start != at(0, 1) {
		t.Errorf("']' partner = %+v, want 0:1", loc)
	}
}

func TestDefinitionNone(t *testing.T) {
	if loc := definition(analyze("+[-]"), testURI, at(0, 0)); loc != nil {
		t.Errorf("definition on '+' = %+v, want nil", loc)
	}
	if loc := definition(analyze("[[-]"), testURI, at(0, 1)); loc != nil {
		t.Errorf("definition in unbalanced document = %+v, want nil", loc)
	}
}

// ---------------------------------------------------------------------------
// Hover
// ---------------------------------------------------------------------------

func TestHover(t *testing.T) {
	tests := []struct {
		text string
		pos  protocol.Position
		want string
	}{
		{"++++++++.", at(0, 3), "`INC` x8 (folded instruction 0)"},
		{"++.", at(0, 2), "`OUT` x1 (folded instruction 1)"},
		{"+[\n-]", at(0, 1), "`LOOP_OPEN` matches `]` at 2:2"},
		{"+[\n-]", at(1, 1), "`LOOP_CLOSE` matches `[` at 1:2"},
		{"[[-]", at(0, 0), "`LOOP_OPEN` (unbalanced)"},
	}

	for _, tt := range tests {
		h := hover(analyze(tt.text), tt.pos)
		if h == nil {
			t.Errorf("hover(%q, %d:%d) = nil", tt.text, tt.pos.Line, tt.pos.Character)
			continue
		}
		mc, ok := h.Contents.(protocol.MarkupContent)
		if !ok {
			t.Fatalf("hover contents is %T, want MarkupContent", h.Contents)
		}
		if mc.Value != tt.want {
			t.Errorf("hover(%q, %d:%d) = %q, want %q", tt.text, tt.pos.Line, tt.pos.Character, mc.Value, tt.want)
		}
	}
}

func TestHoverOnComment(t *testing.T) {
	if h := hover(analyze("just text"), at(0, 4)); h != nil {
		t.Errorf("hover on comment = %+v, want nil", h)
	}
}

func TestNewLSP(t *testing.T) {
	s := NewLSP("test")
	if s.server == nil {
		t.Fatal("server not created")
	}
	if s.handler.TextDocumentHover == nil || s.handler.TextDocumentDefinition == nil {
		t.Error("hover and definition handlers should be registered")
	}
	if s.lookup(testURI) != nil {
		t.Error("fresh server should have no documents")
	}
}
