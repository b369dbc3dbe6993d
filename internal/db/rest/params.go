package rest

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pocketnavi/pocketnavi/internal/db"
	"github.com/pocketnavi/pocketnavi/internal/domain/search/predicate"
)

// encodeQuery renders a record query as PostgREST URL parameters.
func encodeQuery(q *db.RecordQuery) url.Values {
	v := url.Values{}
	if len(q.Fields) > 0 {
		v.Set("select", strings.Join(q.Fields, ","))
	}

	switch p := q.Filter; p.Op() {
	case predicate.OpNone:
	case predicate.OpOr:
		v.Set("or", "("+joinChildren(p)+")")
	case predicate.OpAnd:
		v.Set("and", "("+joinChildren(p)+")")
	default:
		v.Set(p.Field(), leafOperand(p))
	}

	if len(q.Order) > 0 {
		terms := make([]string, len(q.Order))
		for i, o := range q.Order {
			dir := "asc"
			if o.Desc {
				dir = "desc"
			}
			terms[i] = o.Field + "." + dir
		}
		v.Set("order", strings.Join(terms, ","))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

func joinChildren(p predicate.Predicate) string {
	parts := make([]string, len(p.Children()))
	for i, c := range p.Children() {
		parts[i] = treeItem(c)
	}
	return strings.Join(parts, ",")
}

// treeItem renders one element of an or=/and= list.
func treeItem(p predicate.Predicate) string {
	switch p.Op() {
	case predicate.OpOr:
		return "or(" + joinChildren(p) + ")"
	case predicate.OpAnd:
		return "and(" + joinChildren(p) + ")"
	default:
		return p.Field() + "." + leafOperand(p)
	}
}

// leafOperand renders "op.value". Contains is a case-sensitive like with
// LIKE metacharacters escaped. PostgREST reads every * in a like pattern as
// a wildcard, so values holding one use the regex operator instead.
func leafOperand(p predicate.Predicate) string {
	switch p.Op() {
	case predicate.OpContains:
		if strings.Contains(p.Value(), "*") {
			return "match." + quoteValue(regexp.QuoteMeta(p.Value()))
		}
		return "like." + quoteValue("*"+escapeLike(p.Value())+"*")
	case predicate.OpEq:
		return "eq." + quoteValue(p.Value())
	case predicate.OpIn:
		vals := make([]string, len(p.Values()))
		for i, val := range p.Values() {
			vals[i] = quoteValue(val)
		}
		return "in.(" + strings.Join(vals, ",") + ")"
	default:
		return ""
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// quoteValue double-quotes values holding PostgREST reserved characters.
func quoteValue(s string) string {
	if !strings.ContainsAny(s, `,.:()"\ `) {
		return s
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// parseContentRange reads the total from "0-9/42" or "*/0". Unknown totals
// ("0-9/*") yield false.
func parseContentRange(h string) (int, bool) {
	i := strings.LastIndexByte(h, '/')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(h[i+1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
