package crud

import (
	"regexp"
	"slices"

	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain"
)

// validColumn matches plain identifiers; anything else never reaches SQL.
var validColumn = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PaginatedResponse is the list envelope consumed verbatim by the
// client-side table widget. Draw echoes the request's correlation token.
//
// RecordsFiltered is the row count after the initial where-clause and the
// search stage, before paging. HasMoreData reports whether another page
// exists; with an unbounded count it is always false.
type PaginatedResponse[R any] struct {
	Draw            int   `json:"draw"`
	RecordsTotal    int64 `json:"recordsTotal"`
	RecordsFiltered int64 `json:"recordsFiltered"`
	HasMoreData     bool  `json:"hasMoreData"`
	Data            []R   `json:"data"`
}

// QuerySpec configures one paginated query over an entity type E projected
// into response items of type R.
type QuerySpec[E any, R any] struct {
	Request Request

	// SearchFields are entity field names eligible for the free-text search
	// stage. Non-string fields are ignored by SearchScope.
	SearchFields []string

	// InitialScope is a mandatory pre-filter applied after the total count
	// (for example excluding archived rows). Optional.
	InitialScope func(*gorm.DB) *gorm.DB

	// SortFields is the allowlist of columns the client may sort by.
	SortFields []string

	// DefaultSort is the ORDER BY expression used when the client requests no
	// sort column, e.g. "create_time DESC". Empty means "id ASC".
	DefaultSort string

	// Select projects a fetched entity into the response item type.
	Select func(*E) R
}

// RunQuery executes the paginated query pipeline over the given base query.
//
// The stages run in a fixed order: total count on the bare base query, then
// the initial where-clause, then the search predicate, then the filtered
// count, then ordering, then page slicing (skipped when count is CountAll),
// then projection. page < 1 and count < -1 are rejected before any query
// executes.
func RunQuery[E any, R any](base *gorm.DB, spec QuerySpec[E, R]) (*PaginatedResponse[R], error) {
	req := spec.Request

	if req.Page < 1 {
		return nil, domain.NewAppError(domain.CodeValidation, "Page number not valid", nil)
	}
	if req.Count < CountAll {
		return nil, domain.NewAppError(domain.CodeValidation, "Count number not valid", nil)
	}
	if spec.Select == nil {
		return nil, domain.NewAppError(domain.CodeInternal, "query spec has no selector", nil)
	}

	// New session so counts and finishers below each work on their own
	// statement clone.
	q := base.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	if spec.InitialScope != nil {
		q = q.Scopes(spec.InitialScope)
	}
	q = q.Scopes(SearchScope(new(E), spec.SearchFields, req.Search))
	q = q.Session(&gorm.Session{})

	var filtered int64
	if err := q.Count(&filtered).Error; err != nil {
		return nil, mapError(err)
	}

	q = q.Order(orderExpr(req, spec.SortFields, spec.DefaultSort))

	if req.Count != CountAll {
		q = q.Offset((req.Page - 1) * req.Count).Limit(req.Count)
	}

	var rows []E
	if err := q.Find(&rows).Error; err != nil {
		return nil, mapError(err)
	}

	data := make([]R, len(rows))
	for i := range rows {
		data[i] = spec.Select(&rows[i])
	}

	hasMore := false
	if req.Count != CountAll {
		hasMore = int64((req.Page-1)*req.Count+req.Count) < filtered
	}

	return &PaginatedResponse[R]{
		Draw:            req.Draw,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
		HasMoreData:     hasMore,
		Data:            data,
	}, nil
}

// orderExpr resolves the ORDER BY expression for a request. A client sort
// column outside the allowlist (or not a plain identifier) falls back to the
// default, which in turn falls back to "id ASC".
func orderExpr(req Request, allowed []string, defaultSort string) string {
	col := namer.ColumnName("", req.SortColumn)
	if req.SortColumn != "" && validColumn.MatchString(col) && slices.Contains(allowed, col) {
		dir := "ASC"
		if req.Descending() {
			dir = "DESC"
		}
		return col + " " + dir
	}
	if defaultSort != "" {
		return defaultSort
	}
	return "id ASC"
}
