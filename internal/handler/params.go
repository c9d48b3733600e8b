package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryParams collects query-string parse failures so a handler can report
// them all at once.
type queryParams struct {
	values url.Values
	errs   []FieldError
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{values: r.URL.Query()}
}

func (q *queryParams) fail(field, msg string) {
	q.errs = append(q.errs, FieldError{Field: field, Message: msg})
}

func (q *queryParams) date(name string, required bool) time.Time {
	s := q.values.Get(name)
	if s == "" {
		if required {
			q.fail(name, "required")
		}
		return time.Time{}
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		q.fail(name, "must be a date in YYYY-MM-DD format")
		return time.Time{}
	}
	return t
}

func (q *queryParams) datePtr(name string) *time.Time {
	t := q.date(name, false)
	if t.IsZero() {
		return nil
	}
	return &t
}

func (q *queryParams) boolean(name string) bool {
	s := q.values.Get(name)
	if s == "" {
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		q.fail(name, "must be true or false")
	}
	return b
}

func (q *queryParams) integer(name string, def int) int {
	s := q.values.Get(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		q.fail(name, "must be a non-negative integer")
		return def
	}
	return n
}

func (q *queryParams) int64Ptr(name string) *int64 {
	s := q.values.Get(name)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		q.fail(name, "must be a positive integer")
		return nil
	}
	return &n
}

// ids parses a comma-separated id list such as account_ids=1,2,3.
func (q *queryParams) ids(name string) []int64 {
	s := q.values.Get(name)
	if s == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || n <= 0 {
			q.fail(name, "must be a comma-separated list of positive integers")
			return nil
		}
		out = append(out, n)
	}
	return out
}

func (q *queryParams) types(name string) []domain.AccountType {
	s := q.values.Get(name)
	if s == "" {
		return nil
	}
	var out []domain.AccountType
	for _, part := range strings.Split(s, ",") {
		t := domain.AccountType(strings.TrimSpace(part))
		if !t.IsValid() {
			q.fail(name, "must be asset, liability, equity, revenue or expense")
			return nil
		}
		out = append(out, t)
	}
	return out
}
