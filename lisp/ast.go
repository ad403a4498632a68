package lisp

import (
	"math"
	"strconv"
	"strings"
)

// Node is a parsed form: AtomNode, SymbolNode, ListNode or QuotedNode.
type Node interface {
	node()
}

type AtomNode struct {
	Value Value
}

type SymbolNode struct {
	Name string
}

// ListNode keeps its bracket style so that Source can round-trip [x] forms.
type ListNode struct {
	Items   []Node
	Bracket bool
}

type QuotedNode struct {
	Form Node
}

func (AtomNode) node()   {}
func (SymbolNode) node() {}
func (ListNode) node()   {}
func (QuotedNode) node() {}

func symbolName(n Node) (string, bool) {
	s, ok := n.(SymbolNode)
	return s.Name, ok
}

// Source renders a node back to text that Read accepts.
func Source(n Node) string {
	var sb strings.Builder
	writeSource(&sb, n)
	return sb.String()
}

func writeSource(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case AtomNode:
		switch v := n.Value.(type) {
		case String:
			sb.WriteByte('"')
			sb.WriteString(string(v))
			sb.WriteByte('"')
		case Boolean:
			if v {
				sb.WriteString("true")
			} else {
				sb.WriteString("false")
			}
		case Number:
			f := float64(v)
			if math.IsInf(f, 0) || math.IsNaN(f) {
				sb.WriteString(Format(v))
			} else {
				// plain digits only; the lexer has no exponent syntax
				sb.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
			}
		default:
			sb.WriteString(Format(v))
		}
	case SymbolNode:
		sb.WriteString(n.Name)
	case QuotedNode:
		sb.WriteByte('\'')
		writeSource(sb, n.Form)
	case ListNode:
		open, closer := byte('('), byte(')')
		if n.Bracket {
			open, closer = '[', ']'
		}
		sb.WriteByte(open)
		for i, item := range n.Items {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeSource(sb, item)
		}
		sb.WriteByte(closer)
	}
}
