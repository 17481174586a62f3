package catalog

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Case folding happens in the database on both sides of a comparison, so the
// column and the argument are folded by the same rules. SQLite's LOWER only
// folds ASCII; non-ASCII values then match case-sensitively.

// containsPattern builds a LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(s)) + "%"
}

func icontains(column string) string {
	return "LOWER(" + column + `) LIKE LOWER(?) ESCAPE '\'`
}

func iexact(column string) string {
	return "LOWER(" + column + ") = LOWER(?)"
}

// norm is the argument bound to iexact.
func norm(s string) string {
	return strings.TrimSpace(s)
}
