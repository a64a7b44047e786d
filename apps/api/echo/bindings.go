package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/hostel/core"
)

const (
	orderingParam = "ordering"
	dryRunParam   = "dry_run"
)

// Ordering reads `?ordering=-sharing,room_number`: a leading "-" sorts descending.
// Field names are checked against each repository's whitelist, not here.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	seen := make(map[string]bool)
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")
		if field == "" || seen[field] {
			continue
		}
		seen[field] = true
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// queryBool reads a boolean query param; anything unparsable counts as false.
func queryBool(ctx echo.Context, name string) bool {
	b, _ := strconv.ParseBool(ctx.QueryParam(name))
	return b
}

type MessageResponse struct {
	Message string `json:"message"`
}
