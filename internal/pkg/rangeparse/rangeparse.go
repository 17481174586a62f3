// Package rangeparse turns free-form numeric filter text ("550-600", ">=600",
// "<=600 and >=550", "550<=x<=600") into a directional range query.
//
// Parsing fails soft: anything that cannot be read unambiguously yields
// (Query{}, false), which callers treat as "no filter".
package rangeparse

import (
	"regexp"
	"strconv"
	"strings"
)

type Mode int

const (
	Unidirectional Mode = iota + 1
	Bidirectional
)

func (m Mode) String() string {
	switch m {
	case Unidirectional:
		return "unidirectional"
	case Bidirectional:
		return "bidirectional"
	default:
		return "empty"
	}
}

type Op string

const (
	GTE Op = ">="
	GT  Op = ">"
	LTE Op = "<="
	LT  Op = "<"
)

// IsLower reports whether the operator bounds a value from below.
func (op Op) IsLower() bool { return op == GTE || op == GT }

// flip mirrors an operator across the variable: "A <= x" is "x >= A".
func (op Op) flip() Op {
	switch op {
	case GTE:
		return LTE
	case GT:
		return LT
	case LTE:
		return GTE
	case LT:
		return GT
	}
	return op
}

type Bound struct {
	Op    Op
	Value float64
}

// Query is either unidirectional (exactly one of Low/High set) or
// bidirectional (both set). Low <= High is not checked.
type Query struct {
	Mode Mode
	Low  *Bound
	High *Bound
}

// Bounds returns the set bounds, lower first.
func (q Query) Bounds() []Bound {
	out := make([]Bound, 0, 2)
	if q.Low != nil {
		out = append(out, *q.Low)
	}
	if q.High != nil {
		out = append(out, *q.High)
	}
	return out
}

// Contains reports whether v satisfies every bound of q.
func (q Query) Contains(v float64) bool {
	for _, b := range q.Bounds() {
		switch b.Op {
		case GTE:
			if v < b.Value {
				return false
			}
		case GT:
			if v <= b.Value {
				return false
			}
		case LTE:
			if v > b.Value {
				return false
			}
		case LT:
			if v >= b.Value {
				return false
			}
		}
	}
	return true
}

func (q Query) String() string {
	parts := make([]string, 0, 2)
	for _, b := range q.Bounds() {
		parts = append(parts, string(b.Op)+strconv.FormatFloat(b.Value, 'g', -1, 64))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " and ")
}

const number = `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`

var (
	opNumberRE  = regexp.MustCompile(`(>=|=>|<=|=<|>|<)\s*(` + number + `)`)
	ascChainRE  = regexp.MustCompile(`^(` + number + `)\s*(<=|=<|<)\s*[xX]\s*(<=|=<|<)\s*(` + number + `)$`)
	descChainRE = regexp.MustCompile(`^(` + number + `)\s*(>=|=>|>)\s*[xX]\s*(>=|=>|>)\s*(` + number + `)$`)
	shorthandRE = regexp.MustCompile(`^(` + number + `)\s*-\s*(` + number + `)$`)
	connectorRE = regexp.MustCompile(`^(?i:\s|and|&&|&|,|;|x)*$`)
	anyOpRE     = regexp.MustCompile(`[<>]`)
)

// Parse reads text into a Query. The bool is false for empty, malformed or
// ambiguous input.
func Parse(text string) (Query, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Query{}, false
	}

	if m := ascChainRE.FindStringSubmatch(s); m != nil {
		lo, ok1 := parseNumber(m[1])
		hi, ok2 := parseNumber(m[4])
		if !ok1 || !ok2 {
			return Query{}, false
		}
		return bidirectional(Bound{Op: normalizeOp(m[2]).flip(), Value: lo}, Bound{Op: normalizeOp(m[3]), Value: hi}), true
	}
	if m := descChainRE.FindStringSubmatch(s); m != nil {
		hi, ok1 := parseNumber(m[1])
		lo, ok2 := parseNumber(m[4])
		if !ok1 || !ok2 {
			return Query{}, false
		}
		return bidirectional(Bound{Op: normalizeOp(m[3]), Value: lo}, Bound{Op: normalizeOp(m[2]).flip(), Value: hi}), true
	}

	if !anyOpRE.MatchString(s) {
		return parseShorthand(s)
	}

	matches := opNumberRE.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 || len(matches) > 2 {
		return Query{}, false
	}
	if !onlyConnectorsLeft(s, matches) {
		return Query{}, false
	}

	bounds := make([]Bound, 0, len(matches))
	for _, m := range matches {
		v, ok := parseNumber(s[m[4]:m[5]])
		if !ok {
			return Query{}, false
		}
		bounds = append(bounds, Bound{Op: normalizeOp(s[m[2]:m[3]]), Value: v})
	}

	if len(bounds) == 1 {
		b := bounds[0]
		if b.Op.IsLower() {
			return Query{Mode: Unidirectional, Low: &b}, true
		}
		return Query{Mode: Unidirectional, High: &b}, true
	}

	a, b := bounds[0], bounds[1]
	switch {
	case a.Op.IsLower() && !b.Op.IsLower():
		return bidirectional(a, b), true
	case !a.Op.IsLower() && b.Op.IsLower():
		return bidirectional(b, a), true
	default:
		return Query{}, false
	}
}

func parseShorthand(s string) (Query, bool) {
	m := shorthandRE.FindStringSubmatch(s)
	if m == nil {
		return Query{}, false
	}
	lo, ok1 := parseNumber(m[1])
	hi, ok2 := parseNumber(m[2])
	if !ok1 || !ok2 {
		return Query{}, false
	}
	return bidirectional(Bound{Op: GTE, Value: lo}, Bound{Op: LTE, Value: hi}), true
}

func bidirectional(low, high Bound) Query {
	return Query{Mode: Bidirectional, Low: &low, High: &high}
}

func onlyConnectorsLeft(s string, matches [][]int) bool {
	var rest strings.Builder
	prev := 0
	for _, m := range matches {
		rest.WriteString(s[prev:m[0]])
		rest.WriteByte(' ')
		prev = m[1]
	}
	rest.WriteString(s[prev:])
	return connectorRE.MatchString(rest.String())
}

func normalizeOp(raw string) Op {
	switch raw {
	case ">=", "=>":
		return GTE
	case "<=", "=<":
		return LTE
	case ">":
		return GT
	default:
		return LT
	}
}

func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
