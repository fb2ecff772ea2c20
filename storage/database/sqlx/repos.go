// Package sqlxrepos implements the domain repositories over postgres via sqlx.
package sqlxrepos

import (
	"strconv"

	"github.com/azedu/quizdesk/core"
)

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// orderingClause renders an ORDER BY for the requested orderings,
// falling back to the given default clause.
func orderingClause(ordering []core.DBOrdering, def string) string {
	if len(ordering) == 0 {
		if def == "" {
			return ""
		}
		return " ORDER BY " + def
	}
	clause := " ORDER BY "
	for i, ord := range ordering {
		if i > 0 {
			clause += ", "
		}
		clause += ord.String()
	}
	return clause
}
