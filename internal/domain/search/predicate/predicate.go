// Package predicate is the backend-neutral filter tree sent to a filterable store.
package predicate

import (
	"fmt"
	"strings"
)

// MaxChildren is the maximum number of children in one Or/And group.
// Six fields times five search candidates fit comfortably.
const MaxChildren = 64

// Op is the predicate operator.
type Op int

// Operators.
const (
	OpNone Op = iota
	// OpContains is a case-sensitive substring match.
	OpContains
	// OpEq is an exact match.
	OpEq
	// OpIn is membership in a value set.
	OpIn
	OpOr
	OpAnd
)

func (o Op) String() string {
	switch o {
	case OpContains:
		return "contains"
	case OpEq:
		return "eq"
	case OpIn:
		return "in"
	case OpOr:
		return "or"
	case OpAnd:
		return "and"
	default:
		return "none"
	}
}

// Predicate is an immutable filter tree. The zero value matches everything.
type Predicate struct {
	op       Op
	field    string
	value    string
	values   []string
	children []Predicate
}

// Contains creates a case-sensitive substring predicate.
func Contains(field, value string) (Predicate, error) {
	if field == "" {
		return Predicate{}, fmt.Errorf("predicate field is required")
	}
	if value == "" {
		return Predicate{}, fmt.Errorf("contains value is required for field %q", field)
	}
	return Predicate{op: OpContains, field: field, value: value}, nil
}

// Eq creates an exact-match predicate.
func Eq(field, value string) (Predicate, error) {
	if field == "" {
		return Predicate{}, fmt.Errorf("predicate field is required")
	}
	return Predicate{op: OpEq, field: field, value: value}, nil
}

// In creates a membership predicate. At least one value is required.
func In(field string, values ...string) (Predicate, error) {
	if field == "" {
		return Predicate{}, fmt.Errorf("predicate field is required")
	}
	if len(values) == 0 {
		return Predicate{}, fmt.Errorf("in requires at least one value for field %q", field)
	}
	return Predicate{op: OpIn, field: field, values: append([]string(nil), values...)}, nil
}

// Or combines children with OR.
func Or(children ...Predicate) (Predicate, error) {
	return group(OpOr, children)
}

// And combines children with AND.
func And(children ...Predicate) (Predicate, error) {
	return group(OpAnd, children)
}

func group(op Op, children []Predicate) (Predicate, error) {
	if len(children) == 0 {
		return Predicate{}, fmt.Errorf("%s requires at least one child", op)
	}
	if len(children) > MaxChildren {
		return Predicate{}, fmt.Errorf("too many %s children (max %d)", op, MaxChildren)
	}
	for _, c := range children {
		if c.IsZero() {
			return Predicate{}, fmt.Errorf("%s child must not be empty", op)
		}
	}
	return Predicate{op: op, children: append([]Predicate(nil), children...)}, nil
}

// Op returns the operator.
func (p Predicate) Op() Op { return p.op }

// Field returns the field of a leaf predicate.
func (p Predicate) Field() string { return p.field }

// Value returns the operand of Contains/Eq.
func (p Predicate) Value() string { return p.value }

// Values returns the operand set of In.
func (p Predicate) Values() []string { return p.values }

// Children returns the operands of Or/And.
func (p Predicate) Children() []Predicate { return p.children }

// IsZero reports the match-all predicate.
func (p Predicate) IsZero() bool { return p.op == OpNone }

// IsLeaf reports a field predicate.
func (p Predicate) IsLeaf() bool {
	return p.op == OpContains || p.op == OpEq || p.op == OpIn
}

// Fields returns every field referenced by the tree, in first-seen order.
func (p Predicate) Fields() []string {
	seen := make(map[string]struct{})
	var out []string
	p.walk(func(leaf Predicate) {
		if _, ok := seen[leaf.field]; !ok {
			seen[leaf.field] = struct{}{}
			out = append(out, leaf.field)
		}
	})
	return out
}

func (p Predicate) walk(fn func(Predicate)) {
	if p.IsLeaf() {
		fn(p)
		return
	}
	for _, c := range p.children {
		c.walk(fn)
	}
}

// Matches evaluates the predicate against a record. get returns the string
// form of a field and whether it is set; unset fields never match.
func (p Predicate) Matches(get func(field string) (string, bool)) bool {
	switch p.op {
	case OpNone:
		return true
	case OpContains:
		v, ok := get(p.field)
		return ok && strings.Contains(v, p.value)
	case OpEq:
		v, ok := get(p.field)
		return ok && v == p.value
	case OpIn:
		v, ok := get(p.field)
		if !ok {
			return false
		}
		for _, want := range p.values {
			if v == want {
				return true
			}
		}
		return false
	case OpOr:
		for _, c := range p.children {
			if c.Matches(get) {
				return true
			}
		}
		return false
	case OpAnd:
		for _, c := range p.children {
			if !c.Matches(get) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the tree for logs.
func (p Predicate) String() string {
	switch p.op {
	case OpNone:
		return "*"
	case OpContains, OpEq:
		return fmt.Sprintf("%s %s %q", p.field, p.op, p.value)
	case OpIn:
		return fmt.Sprintf("%s in %q", p.field, p.values)
	default:
		parts := make([]string, len(p.children))
		for i, c := range p.children {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, " "+p.op.String()+" ") + ")"
	}
}

// MapFields returns a copy of the tree with every field renamed by fn.
// Repositories use it to translate domain field names to store columns.
func (p Predicate) MapFields(fn func(string) string) Predicate {
	if p.IsLeaf() {
		p.field = fn(p.field)
		return p
	}
	if len(p.children) == 0 {
		return p
	}
	children := make([]Predicate, len(p.children))
	for i, c := range p.children {
		children[i] = c.MapFields(fn)
	}
	p.children = children
	return p
}
