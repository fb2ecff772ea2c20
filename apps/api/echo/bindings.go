package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/azedu/quizdesk/core"
)

const orderingParam = "ordering"

// Ordering binds the "ordering" query param, a comma-separated list of
// field names where a "-" prefix flips the direction.
type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind keeps only fields present in allowed, which maps client field names
// to their database columns; anything else from the client is dropped.
func (ord *Ordering) Bind(ctx echo.Context, allowed map[string]string) {
	raw := ctx.QueryParam(orderingParam)
	if raw == "" {
		return
	}
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		asc := true
		if field[0] == '-' {
			asc = false
			field = field[1:]
		}
		col, ok := allowed[field]
		if !ok {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: col, Ascending: asc})
	}
}

// intParam parses a numeric path param; 0 means absent or malformed.
func intParam(ctx echo.Context, name string) int {
	id, _ := strconv.Atoi(ctx.Param(name))
	return id
}
