package pagination

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit well inside int64.
	MaxPage = math.MaxInt32
)

// ErrInvalidSort indicates a sort field or direction outside the allow-list.
var ErrInvalidSort = errors.New("invalid sort")

// Request is a normalized page/limit pair.
type Request struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit to positive values, applying defaults.
func Normalize(page, limit int) Request {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{Page: page, Limit: limit}
}

// Parse reads page and limit from query values. Missing or non-numeric values
// fall back to the defaults; out-of-range values are clamped.
func Parse(values url.Values) Request {
	return Normalize(atoi(values.Get("page")), atoi(values.Get("limit")))
}

// Offset returns the number of records preceding the requested page.
func (r Request) Offset() int {
	r = Normalize(r.Page, r.Limit)
	return (r.Page - 1) * r.Limit
}

// Window converts the request into an offset window with the given ordering.
func (r Request) Window(sort Sort) Window {
	r = Normalize(r.Page, r.Limit)
	return Window{Offset: r.Offset(), Limit: r.Limit, Sort: sort}
}

func atoi(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

// SortField names an orderable column.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortViews     SortField = "views"
	SortDuration  SortField = "duration"
)

// Direction is the ordering direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is an ordering over an allow-listed field. Ties are always broken by
// creation time descending, then by identifier.
type Sort struct {
	Field     SortField
	Direction Direction
}

// NewestFirst is the default feed ordering.
var NewestFirst = Sort{Field: SortCreatedAt, Direction: Desc}

// ParseSort validates a sort field and direction. Empty input yields NewestFirst.
func ParseSort(field, direction string) (Sort, error) {
	field = strings.TrimSpace(field)
	direction = strings.ToLower(strings.TrimSpace(direction))

	sort := NewestFirst
	switch SortField(field) {
	case "":
	case SortCreatedAt, SortViews, SortDuration:
		sort.Field = SortField(field)
	default:
		return Sort{}, fmt.Errorf("%w: unknown sort field %q", ErrInvalidSort, field)
	}

	switch Direction(direction) {
	case "":
	case Asc, Desc:
		sort.Direction = Direction(direction)
	default:
		return Sort{}, fmt.Errorf("%w: unknown sort direction %q", ErrInvalidSort, direction)
	}

	return sort, nil
}

// Window is an offset/limit slice of an ordered result set.
type Window struct {
	Offset int
	Limit  int
	Sort   Sort
}

// Page is one page of a feed together with the metadata needed to navigate it.
type Page[T any] struct {
	Docs        []T   `json:"docs"`
	TotalDocs   int64 `json:"totalDocs"`
	Limit       int   `json:"limit"`
	Page        int   `json:"page"`
	TotalPages  int   `json:"totalPages"`
	HasPrevPage bool  `json:"hasPrevPage"`
	HasNextPage bool  `json:"hasNextPage"`
	PrevPage    *int  `json:"prevPage"`
	NextPage    *int  `json:"nextPage"`
}

// NewPage assembles page metadata for docs out of total records.
func NewPage[T any](docs []T, total int64, req Request) Page[T] {
	req = Normalize(req.Page, req.Limit)
	if docs == nil {
		docs = []T{}
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	page := Page[T]{
		Docs:        docs,
		TotalDocs:   total,
		Limit:       req.Limit,
		Page:        req.Page,
		TotalPages:  totalPages,
		HasPrevPage: req.Page > 1,
		HasNextPage: req.Page < totalPages,
	}
	if page.HasPrevPage {
		prev := req.Page - 1
		page.PrevPage = &prev
	}
	if page.HasNextPage {
		next := req.Page + 1
		page.NextPage = &next
	}
	return page
}
