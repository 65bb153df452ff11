package panel

import (
	"github.com/padhaihq/padhai/core"
	"github.com/padhaihq/padhai/core/user"
)

// Filters holds the five list query parameters plus the uncommitted search
// buffer. Changing any filter resets the page to 1 so a narrowed result set
// never lands on an out-of-range page. Search text only takes effect on
// SubmitSearch, not on every keystroke.
//
// Filters is not safe for concurrent use; the Controller serializes access.
type Filters struct {
	page        int
	pageSize    int
	search      string // committed
	searchInput string // uncommitted buffer
	role        string
	status      string
	premium     string
}

func NewFilters() *Filters {
	return &Filters{
		page:     1,
		pageSize: user.DefaultPageSize,
		role:     user.FilterAll,
		status:   user.FilterAll,
		premium:  user.FilterAll,
	}
}

func (f *Filters) Page() int           { return f.page }
func (f *Filters) Search() string      { return f.search }
func (f *Filters) SearchInput() string { return f.searchInput }
func (f *Filters) Role() string        { return f.role }
func (f *Filters) Status() string      { return f.status }
func (f *Filters) Premium() string     { return f.premium }

func (f *Filters) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	f.page = page
}

func (f *Filters) SetRole(role string) {
	f.role = core.CleanString(role, true /* lower */)
	f.page = 1
}

func (f *Filters) SetStatus(status string) {
	f.status = core.CleanString(status, true /* lower */)
	f.page = 1
}

func (f *Filters) SetPremium(premium string) {
	f.premium = core.CleanString(premium, true /* lower */)
	f.page = 1
}

// SetSearchInput updates the uncommitted buffer only; no re-query results.
func (f *Filters) SetSearchInput(s string) {
	f.searchInput = s
}

// SubmitSearch commits the buffered search text and resets to page 1.
func (f *Filters) SubmitSearch() {
	f.search = core.CleanString(f.searchInput)
	f.page = 1
}

// Params snapshots the committed query tuple. "all" filters are sent as
// empty values so the server applies no constraint.
func (f *Filters) Params() ListParams {
	params := ListParams{
		Page:     f.page,
		PageSize: f.pageSize,
		Search:   f.search,
	}
	if f.role != user.FilterAll {
		params.Role = f.role
	}
	if f.status != user.FilterAll {
		params.Status = f.status
	}
	if f.premium != user.FilterAll {
		params.Premium = f.premium
	}
	return params
}
