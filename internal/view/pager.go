package view

import (
	"net/url"
	"strconv"

	"github.com/mediboard/mediboard/internal/shared"
)

// PageLink is one numbered entry in the pagination control.
type PageLink struct {
	Number  int
	URL     string
	Current bool
}

// Pager pairs pagination metadata with ready-to-render page links.
type Pager struct {
	Paging shared.Pagination
	Pages  []PageLink
}

// NewPager builds page links from the current request URL, rewriting only the
// page query parameter so active filters survive navigation.
func NewPager(paging shared.Pagination, current *url.URL) Pager {
	pager := Pager{Paging: paging}
	if paging.TotalPages <= 1 {
		return pager
	}
	for n := 1; n <= paging.TotalPages; n++ {
		q := current.Query()
		q.Set("page", strconv.Itoa(n))
		pager.Pages = append(pager.Pages, PageLink{
			Number:  n,
			URL:     current.Path + "?" + q.Encode(),
			Current: n == paging.Page,
		})
	}
	return pager
}
