package libclient

import (
	"net/url"
	"strconv"
)

// ListParams carries the search, filter, and pagination controls shared by
// the four list views. Encoded field names follow the remote API's query
// parameters, which differ slightly between endpoints.
type ListParams struct {
	Page        int    `validate:"omitempty,min=1"`
	Limit       int    `validate:"omitempty,min=1,max=100"`
	SearchQuery string `validate:"omitempty,max=200"`
	SearchBy    string `validate:"omitempty,oneof=title author book borrower borrowerEmail name email"`

	// FilterStatus filters book lists (all, available, not_available,
	// deleted, not_deleted) and user lists (all, verified, not_verified).
	FilterStatus string `validate:"omitempty,listfilter"`

	// ReturnStatus and AccountStatus filter borrow record lists.
	ReturnStatus  string `validate:"omitempty,listfilter"`
	AccountStatus string `validate:"omitempty,oneof=Active Deleted"`
}

func (p ListParams) page() string {
	if p.Page < 1 {
		return "1"
	}
	return strconv.Itoa(p.Page)
}

func (p ListParams) limit() string {
	if p.Limit < 1 {
		return "10"
	}
	return strconv.Itoa(p.Limit)
}

// availableBooksQuery encodes params for GET /api/books/available
func (p ListParams) availableBooksQuery() url.Values {
	q := url.Values{}
	q.Set("page", p.page())
	q.Set("limit", p.limit())
	if p.SearchQuery != "" {
		q.Set("searchQuery", p.SearchQuery)
		q.Set("searchBy", p.SearchBy)
	}
	if p.FilterStatus != "" {
		q.Set("filterStatus", p.FilterStatus)
	}
	return q
}

// allBooksQuery encodes params for the admin GET /api/books
func (p ListParams) allBooksQuery() url.Values {
	q := url.Values{}
	q.Set("page", p.page())
	q.Set("limit", p.limit())
	if p.SearchQuery != "" {
		q.Set("search_query", p.SearchQuery)
	}
	if p.SearchBy != "" {
		q.Set("search_by", p.SearchBy)
	}
	if p.FilterStatus != "" {
		q.Set("filter_status", p.FilterStatus)
	}
	return q
}

// borrowRecordsQuery encodes params for the admin GET /api/borrow/records
func (p ListParams) borrowRecordsQuery() url.Values {
	q := url.Values{}
	q.Set("page", p.page())
	q.Set("limit", p.limit())
	if p.SearchQuery != "" {
		q.Set("searchQuery", p.SearchQuery)
		q.Set("searchBy", p.SearchBy)
	}
	if p.ReturnStatus != "" {
		q.Set("returnStatus", p.ReturnStatus)
	}
	if p.AccountStatus != "" {
		q.Set("accountStatus", p.AccountStatus)
	}
	return q
}

// borrowHistoryQuery encodes params for GET /api/borrow/history
func (p ListParams) borrowHistoryQuery() url.Values {
	q := url.Values{}
	q.Set("page", p.page())
	q.Set("limit", p.limit())
	if p.SearchQuery != "" {
		q.Set("search", p.SearchQuery)
		q.Set("search_by", p.SearchBy)
	}
	if p.ReturnStatus != "" {
		q.Set("return_status", p.ReturnStatus)
	}
	return q
}

// usersQuery encodes params for the admin GET /api/admin/user
func (p ListParams) usersQuery() url.Values {
	q := url.Values{}
	q.Set("page", p.page())
	q.Set("limit", p.limit())
	if p.SearchQuery != "" {
		q.Set("search", p.SearchQuery)
		q.Set("searchBy", p.SearchBy)
	}
	if p.FilterStatus != "" {
		q.Set("verified", p.FilterStatus)
	}
	return q
}
