// Package catalogview derives what the browser pages show from an already
// fetched product list. Nothing here touches the network.
package catalogview

import (
	"fmt"
	"sort"

	"katalog/internal/models"
)

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 3

// Criteria narrows a product list. Empty fields do not filter. Dates are
// YYYY-MM-DD strings and both bounds are inclusive.
type Criteria struct {
	Status    string
	StartDate string
	EndDate   string
}

// Active reports whether any filter is set.
func (c Criteria) Active() bool {
	return c.Status != "" || c.StartDate != "" || c.EndDate != ""
}

// Matches reports whether p passes every set filter.
func (c Criteria) Matches(p models.Product) bool {
	if c.Status != "" && p.Status != c.Status {
		return false
	}
	if c.StartDate != "" && p.Date < c.StartDate {
		return false
	}
	if c.EndDate != "" && p.Date > c.EndDate {
		return false
	}
	return true
}

// Filter returns the products matching c, in their original order.
func Filter(products []models.Product, c Criteria) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Page is one page of a filtered product list.
type Page struct {
	Items      []models.Product
	Number     int
	TotalPages int
	PageSize   int
	// Filtered is the number of products left after filtering, Total the
	// number before.
	Filtered int
	Total    int
	HasPrev  bool
	HasNext  bool
}

// Label renders the page position, e.g. "Page 2 of 2".
func (p Page) Label() string {
	return fmt.Sprintf("Page %d of %d", p.Number, p.TotalPages)
}

// Summary renders the counts line shown above the list.
func (p Page) Summary() string {
	return fmt.Sprintf("Showing %d of %d products (out of %d total)", len(p.Items), p.Filtered, p.Total)
}

// PrevNumber and NextNumber are the neighbouring page numbers.
func (p Page) PrevNumber() int { return p.Number - 1 }
func (p Page) NextNumber() int { return p.Number + 1 }

// Paginate slices products into pages of size and returns page number. The
// number is clamped into [1, TotalPages]; an empty list has one empty page.
func Paginate(products []models.Product, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := (len(products) + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * size
	end := start + size
	if start > len(products) {
		start = len(products)
	}
	if end > len(products) {
		end = len(products)
	}

	return Page{
		Items:      products[start:end],
		Number:     number,
		TotalPages: totalPages,
		PageSize:   size,
		Filtered:   len(products),
		Total:      len(products),
		HasPrev:    number > 1,
		HasNext:    number < totalPages,
	}
}

// Build filters products by c and returns the requested page.
func Build(products []models.Product, c Criteria, number, size int) Page {
	page := Paginate(Filter(products, c), number, size)
	page.Total = len(products)
	return page
}

// Stats are the dashboard counters.
type Stats struct {
	Total    int
	Active   int
	Inactive int
}

// Count tallies products by status.
func Count(products []models.Product) Stats {
	s := Stats{Total: len(products)}
	for _, p := range products {
		switch p.Status {
		case models.StatusActive:
			s.Active++
		case models.StatusInactive:
			s.Inactive++
		}
	}
	return s
}

// Recent returns up to n products, newest first by creation time.
func Recent(products []models.Product, n int) []models.Product {
	sorted := make([]models.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
