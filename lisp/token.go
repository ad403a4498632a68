package lisp

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

type TokenKind int

const (
	NumberToken TokenKind = iota
	StringToken
	BooleanToken
	SymbolToken
	ParenToken
	QuoteToken
)

var tokenKindNames = [...]string{"number", "string", "boolean", "symbol", "paren", "quote"}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "token(" + strconv.Itoa(int(k)) + ")"
}

// Token is one lexeme. Value is set for number, string and boolean tokens.
// Unterminated marks a string that ran to the end of the input.
type Token struct {
	Kind         TokenKind
	Text         string
	Value        Value
	Unterminated bool
}

var numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Tokenize never fails. Malformed input shows up as tokens the parser rejects.
func Tokenize(src string) []Token {
	var (
		tokens    []Token
		buf       strings.Builder
		inString  bool
		inComment bool
	)
	flush := func() {
		if buf.Len() > 0 {
			tokens = append(tokens, classify(buf.String()))
			buf.Reset()
		}
	}
	for _, r := range src {
		switch {
		case inComment:
			if r == '\n' {
				inComment = false
			}
		case inString:
			if r == '"' {
				s := buf.String()
				tokens = append(tokens, Token{Kind: StringToken, Text: s, Value: String(s)})
				buf.Reset()
				inString = false
				continue
			}
			buf.WriteRune(r)
		case r == '"':
			flush()
			inString = true
		case r == '(' || r == ')' || r == '[' || r == ']':
			flush()
			tokens = append(tokens, Token{Kind: ParenToken, Text: string(r)})
		case r == '\'' && buf.Len() == 0:
			tokens = append(tokens, Token{Kind: QuoteToken, Text: "'"})
		case r == ';':
			flush()
			inComment = true
		case unicode.IsSpace(r):
			flush()
		default:
			buf.WriteRune(r)
		}
	}
	if inString {
		s := buf.String()
		return append(tokens, Token{Kind: StringToken, Text: s, Value: String(s), Unterminated: true})
	}
	flush()
	return tokens
}

func classify(text string) Token {
	switch text {
	case "true", "#t":
		return Token{Kind: BooleanToken, Text: text, Value: Boolean(true)}
	case "false", "#f", "nil":
		return Token{Kind: BooleanToken, Text: text, Value: Boolean(false)}
	}
	if numberPattern.MatchString(text) {
		f, err := strconv.ParseFloat(text, 64)
		if err == nil {
			return Token{Kind: NumberToken, Text: text, Value: Number(f)}
		}
	}
	return Token{Kind: SymbolToken, Text: text}
}
