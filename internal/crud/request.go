package crud

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultCount = 10
	defaultDraw  = 1

	// CountAll is the page-size sentinel meaning "return every matching row".
	CountAll = -1
)

// filterParam matches structured filter keys of the form filters[name].
var filterParam = regexp.MustCompile(`^filters\[([a-zA-Z_][a-zA-Z0-9_]*)\]$`)

// Request carries the paginated list query contract: page/count slicing, an
// opaque draw token echoed back to the client, a free-text search term,
// client-requested ordering, and resource-defined structured filters.
//
// Page is 1-based. Count -1 (CountAll) disables slicing. Values below the
// valid range are kept as parsed so the query engine can reject them with a
// validation error instead of silently clamping.
type Request struct {
	Page          int
	Count         int
	Draw          int
	Search        string
	SortColumn    string
	SortDirection string
	Filters       map[string]string
}

// Descending reports whether the client asked for a descending sort.
func (r Request) Descending() bool {
	return strings.EqualFold(strings.TrimSpace(r.SortDirection), "desc")
}

// Filter returns the named structured filter value, or "" when absent.
func (r Request) Filter(key string) string {
	return r.Filters[key]
}

// ParseRequest extracts a list query Request from the query string.
//
// The search term falls back to the DataTables-style search[value] parameter
// when the primary search field is empty. Unknown filter keys are collected
// as-is; resources decide which ones they honor and ignore the rest.
func ParseRequest(c *gin.Context) Request {
	page := intQuery(c, "page", defaultPage)
	count := intQuery(c, "count", defaultCount)
	draw := intQuery(c, "draw", defaultDraw)

	search := c.Query("search")
	if strings.TrimSpace(search) == "" {
		search = c.Query("search[value]")
	}

	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		m := filterParam.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			filters[m[1]] = values[0]
		}
	}

	return Request{
		Page:          page,
		Count:         count,
		Draw:          draw,
		Search:        search,
		SortColumn:    strings.TrimSpace(c.Query("sortColumn")),
		SortDirection: c.DefaultQuery("sortDirection", "asc"),
		Filters:       filters,
	}
}

// intQuery parses an integer query parameter, returning def when the
// parameter is absent or not a number.
func intQuery(c *gin.Context, name string, def int) int {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
