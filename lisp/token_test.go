package lisp

import (
	"reflect"
	"testing"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		src  string
		want []TokenKind
	}{
		{"(+ 1 2)", []TokenKind{ParenToken, SymbolToken, NumberToken, NumberToken, ParenToken}},
		{`(concat "a b" "c")`, []TokenKind{ParenToken, SymbolToken, StringToken, StringToken, ParenToken}},
		{"'(a b)", []TokenKind{QuoteToken, ParenToken, SymbolToken, SymbolToken, ParenToken}},
		{"#t #f true false nil", []TokenKind{BooleanToken, BooleanToken, BooleanToken, BooleanToken, BooleanToken}},
		{"[x 1]", []TokenKind{ParenToken, SymbolToken, NumberToken, ParenToken}},
		{"-3.5 1. -x", []TokenKind{NumberToken, SymbolToken, SymbolToken}},
		{"don't", []TokenKind{SymbolToken}},
		{"(+ 1 2) ; adds\n3", []TokenKind{ParenToken, SymbolToken, NumberToken, NumberToken, ParenToken, NumberToken}},
		{"", []TokenKind{}},
		{"  \t\n", []TokenKind{}},
	}
	for _, tt := range tests {
		got := kinds(Tokenize(tt.src))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) kinds = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestTokenizeValues(t *testing.T) {
	tokens := Tokenize(`(x "hello world" -2.5 nil #t)`)
	if len(tokens) != 7 {
		t.Fatalf("got %d tokens, want 7", len(tokens))
	}
	if tokens[2].Value != String("hello world") {
		t.Errorf("string value = %#v", tokens[2].Value)
	}
	if tokens[3].Value != Number(-2.5) {
		t.Errorf("number value = %#v", tokens[3].Value)
	}
	if tokens[4].Value != Boolean(false) {
		t.Errorf("nil literal = %#v, want false", tokens[4].Value)
	}
	if tokens[5].Value != Boolean(true) {
		t.Errorf("#t literal = %#v", tokens[5].Value)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	tokens := Tokenize(`(concat "abc`)
	last := tokens[len(tokens)-1]
	if last.Kind != StringToken || !last.Unterminated || last.Text != "abc" {
		t.Fatalf("last token = %+v", last)
	}
}

func TestTokenizeSemicolonInsideString(t *testing.T) {
	tokens := Tokenize(`"a;b"`)
	if len(tokens) != 1 || tokens[0].Text != "a;b" {
		t.Fatalf("tokens = %+v", tokens)
	}
}
