// Package paginator splits a date-ordered list into fixed-size pages.
package paginator

import (
	"slices"
	"time"
)

// Paginator walks pages of items sorted newest first.
// Page numbers are 1-based; PreviousPage is 0 on the first page and NextPage is
// always Page+1, so callers detect the end by an empty Items slice.
type Paginator[T any] struct {
	PerPage      int
	Page         int
	PreviousPage int
	NextPage     int
	Pages        int
	Items        []T

	all []T
}

// New sorts a copy of items by dateOf descending (stable: equal dates keep
// their relative order) and positions the paginator on page 1.
func New[T any](perPage int, items []T, dateOf func(T) time.Time) *Paginator[T] {
	if perPage <= 0 {
		perPage = 1
	}
	all := slices.Clone(items)
	slices.SortStableFunc(all, func(a, b T) int {
		return dateOf(b).Compare(dateOf(a))
	})
	p := &Paginator[T]{PerPage: perPage, all: all, Pages: pageCount(len(all), perPage)}
	p.setPage(1)
	return p
}

// pageCount is the ceiling of total/perPage, never less than one.
func pageCount(total, perPage int) int {
	n := (total + perPage - 1) / perPage
	if n < 1 {
		return 1
	}
	return n
}

// AdvancePage moves to the next page. There is no wraparound: past the last
// page Items is empty.
func (p *Paginator[T]) AdvancePage() {
	p.setPage(p.Page + 1)
}

func (p *Paginator[T]) setPage(page int) {
	p.Page = page
	p.PreviousPage = page - 1
	p.NextPage = page + 1

	start := min((page-1)*p.PerPage, len(p.all))
	end := min(page*p.PerPage, len(p.all))
	p.Items = p.all[start:end]
}

// All returns every item in sorted order.
func (p *Paginator[T]) All() []T { return p.all }

// Exhausted reports whether the current page holds no items.
func (p *Paginator[T]) Exhausted() bool { return len(p.Items) == 0 }

// HasPrevious reports whether a page precedes the current one.
func (p *Paginator[T]) HasPrevious() bool { return p.PreviousPage > 0 }

// HasNext reports whether another non-empty page follows the current one.
func (p *Paginator[T]) HasNext() bool { return p.Page*p.PerPage < len(p.all) }
