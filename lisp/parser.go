package lisp

var closers = map[string]string{"(": ")", "[": "]"}

// Parse reads exactly one form from tokens and returns the tokens after it.
func Parse(tokens []Token) (Node, []Token, error) {
	if len(tokens) == 0 {
		return nil, tokens, syntaxError(UnexpectedEOF, "unexpected end of input")
	}
	tok, rest := tokens[0], tokens[1:]
	switch tok.Kind {
	case QuoteToken:
		form, rest, err := Parse(rest)
		if err != nil {
			return nil, rest, err
		}
		return QuotedNode{Form: form}, rest, nil
	case ParenToken:
		if closer, ok := closers[tok.Text]; ok {
			return parseList(closer, rest)
		}
		return nil, rest, syntaxError(UnexpectedCloseParen, "unexpected closing parenthesis "+tok.Text)
	case SymbolToken:
		return SymbolNode{Name: tok.Text}, rest, nil
	case StringToken:
		if tok.Unterminated {
			return nil, rest, syntaxError(UnterminatedString, "unterminated string")
		}
	}
	return AtomNode{Value: tok.Value}, rest, nil
}

func parseList(closer string, tokens []Token) (Node, []Token, error) {
	items := []Node{}
	for {
		if len(tokens) == 0 {
			return nil, tokens, syntaxError(UnbalancedParens, "missing closing parenthesis "+closer)
		}
		tok := tokens[0]
		if tok.Kind == ParenToken && (tok.Text == ")" || tok.Text == "]") {
			if tok.Text != closer {
				return nil, tokens[1:], syntaxError(MismatchedBracket, "expected "+closer+" but found "+tok.Text)
			}
			return ListNode{Items: items, Bracket: closer == "]"}, tokens[1:], nil
		}
		item, rest, err := Parse(tokens)
		if err != nil {
			return nil, rest, err
		}
		items = append(items, item)
		tokens = rest
	}
}

// Read tokenizes src and parses its first form.
func Read(src string) (Node, error) {
	n, _, err := Parse(Tokenize(src))
	return n, err
}

// ReadAll parses every form in src.
func ReadAll(src string) ([]Node, error) {
	var nodes []Node
	tokens := Tokenize(src)
	for len(tokens) > 0 {
		n, rest, err := Parse(tokens)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		tokens = rest
	}
	return nodes, nil
}
