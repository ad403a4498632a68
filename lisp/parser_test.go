package lisp

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseStructure(t *testing.T) {
	n, err := Read("(define x '(1 \"two\" [y]))")
	if err != nil {
		t.Fatal(err)
	}
	want := ListNode{Items: []Node{
		SymbolNode{Name: "define"},
		SymbolNode{Name: "x"},
		QuotedNode{Form: ListNode{Items: []Node{
			AtomNode{Value: Number(1)},
			AtomNode{Value: String("two")},
			ListNode{Items: []Node{SymbolNode{Name: "y"}}, Bracket: true},
		}}},
	}}
	if !reflect.DeepEqual(n, want) {
		t.Fatalf("Read = %#v\nwant %#v", n, want)
	}
}

func TestParseReturnsRemainder(t *testing.T) {
	_, rest, err := Parse(Tokenize("(+ 1 2) (+ 3 4)"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 5 {
		t.Fatalf("remainder has %d tokens, want 5", len(rest))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src    string
		reason Reason
	}{
		{"", UnexpectedEOF},
		{"'", UnexpectedEOF},
		{"(+ 1 2", UnbalancedParens},
		{"((", UnbalancedParens},
		{")", UnexpectedCloseParen},
		{"(+ 1 2]", MismatchedBracket},
		{"[1 2)", MismatchedBracket},
		{`(concat "abc`, UnterminatedString},
	}
	for _, tt := range tests {
		_, err := Read(tt.src)
		var le *Error
		if !errors.As(err, &le) {
			t.Errorf("Read(%q) error = %v, want *Error", tt.src, err)
			continue
		}
		if le.Kind != SyntaxError || le.Reason != tt.reason {
			t.Errorf("Read(%q) = kind %v reason %v, want reason %v", tt.src, le.Kind, le.Reason, tt.reason)
		}
	}
}

func TestParseBalanced(t *testing.T) {
	for _, src := range []string{"()", "(())", "(a (b (c)) [d])", "'(x)"} {
		if _, err := Read(src); err != nil {
			t.Errorf("Read(%q): %v", src, err)
		}
	}
}

func TestSourceRoundTrip(t *testing.T) {
	for _, src := range []string{
		"(defn double [x] (* x 2))",
		`(concat "a" "b")`,
		"(if true 1 -2.5)",
		"'(a b)",
		"(fn [] (do))",
	} {
		n, err := Read(src)
		if err != nil {
			t.Fatalf("Read(%q): %v", src, err)
		}
		if got := Source(n); got != src {
			t.Errorf("Source(Read(%q)) = %q", src, got)
		}
	}
}

func TestReadAll(t *testing.T) {
	nodes, err := ReadAll("(define a 1) (define b 2) a")
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
}
