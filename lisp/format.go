package lisp

import (
	"math"
	"strconv"
	"strings"
)

// Format renders a value for display: strings are bare, booleans are #t/#f
// and numbers print the way a browser console prints them.
func Format(v Value) string {
	var sb strings.Builder
	writeValue(&sb, v, false)
	return sb.String()
}

// Inspect is Format with strings quoted, for the REPL.
func Inspect(v Value) string {
	var sb strings.Builder
	writeValue(&sb, v, true)
	return sb.String()
}

func writeValue(sb *strings.Builder, v Value, quote bool) {
	switch v := v.(type) {
	case nil, Nil:
		sb.WriteString("nil")
	case Number:
		sb.WriteString(formatNumber(float64(v)))
	case String:
		if quote {
			sb.WriteString(strconv.Quote(string(v)))
		} else {
			sb.WriteString(string(v))
		}
	case Boolean:
		if v {
			sb.WriteString("#t")
		} else {
			sb.WriteString("#f")
		}
	case Symbol:
		sb.WriteString(string(v))
	case Keyword:
		sb.WriteString(":" + string(v))
	case List:
		sb.WriteByte('(')
		for i, item := range v {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeValue(sb, item, quote)
		}
		sb.WriteByte(')')
	case Builtin:
		sb.WriteString("#<builtin:" + v.Name + ">")
	case *Closure:
		sb.WriteString("#<lambda>")
	case *recurSignal:
		sb.WriteString("#<recur>")
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'g', -1, 64)
		s = strings.Replace(s, "e-0", "e-", 1)
		return strings.Replace(s, "e+0", "e+", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
