package world

import (
	"strconv"

	"github.com/steelseries/golisp"
)

// text accepts a string or a bare symbol.
func text(d *golisp.Data) string {
	switch {
	case golisp.NilP(d):
		return ""
	case golisp.StringP(d), golisp.SymbolP(d):
		return golisp.StringValue(d)
	case golisp.IntegerP(d):
		return strconv.FormatInt(golisp.IntegerValue(d), 10)
	}
	return golisp.String(d)
}

func texts(d *golisp.Data) []string {
	var out []string
	for c := d; golisp.NotNilP(c); c = golisp.Cdr(c) {
		out = append(out, text(golisp.Car(c)))
	}
	return out
}

func number(d *golisp.Data) (float64, bool) {
	switch {
	case golisp.NilP(d):
		return 0, false
	case golisp.IntegerP(d):
		return float64(golisp.IntegerValue(d)), true
	case golisp.FloatP(d):
		return float64(golisp.FloatValue(d)), true
	}
	return 0, false
}

// clause is one (name args...) entry inside a content form.
type clause struct {
	name string
	args *golisp.Data
}

func (c clause) arg() string {
	return text(golisp.Car(c.args))
}

func (c clause) count() int {
	return golisp.Length(c.args)
}

func clauses(form, id string, d *golisp.Data) ([]clause, error) {
	var out []clause
	for c := d; golisp.NotNilP(c); c = golisp.Cdr(c) {
		item := golisp.Car(c)
		if !golisp.PairP(item) || !golisp.SymbolP(golisp.Car(item)) {
			return nil, &ContentError{Form: form, ID: id, Msg: "expected a (clause ...) form, got " + golisp.String(item)}
		}
		out = append(out, clause{name: golisp.StringValue(golisp.Car(item)), args: golisp.Cdr(item)})
	}
	return out, nil
}

func header(form string, args *golisp.Data) (string, []clause, error) {
	head := golisp.Car(args)
	if !golisp.SymbolP(head) && !golisp.StringP(head) {
		return "", nil, &ContentError{Form: form, Msg: "expected an id, got " + golisp.String(head)}
	}
	id := text(head)
	cs, err := clauses(form, id, golisp.Cdr(args))
	return id, cs, err
}
