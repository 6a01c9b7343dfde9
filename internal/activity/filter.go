package activity

import (
	"strings"

	"github.com/mediboard/mediboard/internal/shared"
)

// Query describes one filtered, paginated view over a record list. Search is
// a substring match; Method and Country are exact-match categorical filters
// that are skipped when empty.
type Query struct {
	Search   string
	Method   string
	Country  string
	Page     int
	PageSize int
}

// Result is the visible page slice plus paging metadata. Records keep their
// original fetch order; filtering and pagination never reorder.
type Result struct {
	Records []Record
	Paging  shared.Pagination
}

// Matches reports whether rec passes the search substring and every
// categorical filter. The search term is matched case-insensitively against
// the flattened route history, city, country, method and the user's display
// name and email; the IP address is matched case-sensitively.
func (q Query) Matches(rec Record) bool {
	if q.Method != "" && rec.Method != q.Method {
		return false
	}
	if q.Country != "" && rec.Country != q.Country {
		return false
	}
	term := strings.TrimSpace(q.Search)
	if term == "" {
		return true
	}
	if strings.Contains(rec.IPAddress, term) {
		return true
	}
	folded := strings.ToLower(term)
	for _, field := range searchFields(rec) {
		if strings.Contains(strings.ToLower(field), folded) {
			return true
		}
	}
	return false
}

// Filter returns the records passing q, preserving input order.
func Filter(records []Record, q Query) []Record {
	matched := make([]Record, 0, len(records))
	for _, rec := range records {
		if q.Matches(rec) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// Apply filters records and slices out the requested page. The page number is
// clamped into [1, totalPages] so an out-of-range page is never produced.
func Apply(records []Record, q Query) Result {
	matched := Filter(records, q)
	paging := shared.NewPagination(q.Page, q.PageSize, len(matched))

	start := paging.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + paging.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return Result{Records: matched[start:end], Paging: paging}
}

func searchFields(rec Record) []string {
	fields := []string{
		strings.Join(rec.Routes, " "),
		rec.City,
		rec.Country,
		rec.Method,
	}
	if rec.User != nil {
		fields = append(fields, rec.User.Name+" "+rec.User.Email)
	}
	return fields
}
