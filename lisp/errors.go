package lisp

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	SyntaxError ErrorKind = iota + 1
	UnknownVariable
	NotApplicable
	ArityOrTypeError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case UnknownVariable:
		return "unknown variable"
	case NotApplicable:
		return "not applicable"
	case ArityOrTypeError:
		return "arity or type error"
	}
	return fmt.Sprintf("error(%d)", int(k))
}

// Reason refines an ErrorKind.
type Reason int

const (
	NoReason Reason = iota
	UnexpectedEOF
	UnbalancedParens
	UnexpectedCloseParen
	MismatchedBracket
	UnterminatedString
	SetUnbound
	RecurOutsideTail
	RecursionLimit
)

type Error struct {
	Kind   ErrorKind
	Reason Reason
	Name   string
	Detail string
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "":
		return e.Kind.String() + ": " + e.Detail
	case e.Name != "":
		return e.Kind.String() + ": " + e.Name
	}
	return e.Kind.String()
}

func syntaxError(reason Reason, detail string) *Error {
	return &Error{Kind: SyntaxError, Reason: reason, Detail: detail}
}

func unknownVariable(name string) *Error {
	return &Error{Kind: UnknownVariable, Name: name, Detail: name}
}

func notApplicable(label string) *Error {
	return &Error{Kind: NotApplicable, Name: label, Detail: "cannot apply " + label}
}

func typeError(name, format string, args ...any) *Error {
	return &Error{Kind: ArityOrTypeError, Name: name, Detail: name + " " + fmt.Sprintf(format, args...)}
}

// Friendly turns an evaluation error into a message for a young learner.
func Friendly(err error) string {
	var le *Error
	if !errors.As(err, &le) {
		return fmt.Sprintf("Something went wrong: %v. Don't worry, try again!", err)
	}
	switch le.Kind {
	case SyntaxError:
		switch le.Reason {
		case UnbalancedParens:
			return "Looks like you're missing a closing parenthesis ). Every ( needs a matching )!"
		case UnexpectedCloseParen:
			return "You have an extra closing parenthesis ) that doesn't match any (. Try counting your parentheses!"
		case MismatchedBracket:
			return "Your brackets don't match: a ( has to close with ) and a [ has to close with ]."
		case UnterminatedString:
			return `Your text is missing its closing quote ". Strings need a quote at both ends, like "hello".`
		}
		return "Your spell ended too soon. Something is missing at the end!"
	case UnknownVariable:
		if le.Reason == SetUnbound {
			return fmt.Sprintf(`You can't set! "%s" because it doesn't exist yet. Create it first with (define %s ...)`, le.Name, le.Name)
		}
		return fmt.Sprintf(`Hmm, I don't know what "%s" means yet. Did you spell it right? Maybe you need to define it first with (define ...)`, le.Name)
	case NotApplicable:
		return fmt.Sprintf(`"%s" isn't a function, so it can't go first. Remember: the function goes FIRST inside the parentheses, like (+ 1 2)`, le.Name)
	case ArityOrTypeError:
		switch le.Reason {
		case RecursionLimit:
			return "Whoa, your spell went too deep! A function kept calling itself. Does it have a way to stop?"
		case RecurOutsideTail:
			return "recur has to be the very last thing inside a loop or a function."
		}
		return fmt.Sprintf("Oops! %s. Check what that function needs!", le.Detail)
	}
	return le.Error()
}
