package puzzle

import (
	"strings"

	"lispquest/lisp"
)

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func DisplayEquals(want string) Predicate {
	return func(a Attempt) bool {
		return strings.TrimSpace(a.Display) == want
	}
}

// ValueEquals matches a string result exactly.
func ValueEquals(want string) Predicate {
	return func(a Attempt) bool {
		s, ok := a.Value.(lisp.String)
		return ok && string(s) == want
	}
}

func NumberEquals(want float64) Predicate {
	return func(a Attempt) bool {
		n, ok := a.Value.(lisp.Number)
		return ok && float64(n) == want
	}
}

// IsTrue matches the boolean true.
func IsTrue() Predicate {
	return func(a Attempt) bool {
		return a.Value == lisp.Boolean(true)
	}
}

// DisplayContainsAll ignores case and runs of whitespace.
func DisplayContainsAll(parts ...string) Predicate {
	return func(a Attempt) bool {
		d := normalize(a.Display)
		for _, p := range parts {
			if !strings.Contains(d, normalize(p)) {
				return false
			}
		}
		return true
	}
}

func DisplayExcludes(parts ...string) Predicate {
	return func(a Attempt) bool {
		d := normalize(a.Display)
		for _, p := range parts {
			if strings.Contains(d, normalize(p)) {
				return false
			}
		}
		return true
	}
}

func Defined(name string) Predicate {
	return func(a Attempt) bool {
		return a.Env != nil && a.Env.Defined(name)
	}
}

// SourceContainsAll is a lexical heuristic over the submitted code.
func SourceContainsAll(parts ...string) Predicate {
	return func(a Attempt) bool {
		for _, p := range parts {
			if !strings.Contains(a.Source, p) {
				return false
			}
		}
		return true
	}
}

func All(ps ...Predicate) Predicate {
	return func(a Attempt) bool {
		for _, p := range ps {
			if !p(a) {
				return false
			}
		}
		return true
	}
}
