package catalogview_test

import (
	"fmt"
	"testing"
	"time"

	"katalog/internal/catalogview"
	"katalog/internal/models"

	"github.com/stretchr/testify/assert"
)

func catalog() []models.Product {
	statuses := []string{"active", "inactive", "active", "active", "inactive", "active", "inactive"}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	products := make([]models.Product, len(statuses))
	for i, s := range statuses {
		products[i] = models.Product{
			ID:        fmt.Sprintf("p%d", i+1),
			Title:     fmt.Sprintf("Product %d", i+1),
			Status:    s,
			Date:      fmt.Sprintf("2024-01-%02d", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return products
}

func ids(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestBuildSecondPageOfActiveProducts(t *testing.T) {
	page := catalogview.Build(catalog(), catalogview.Criteria{Status: "active"}, 2, 3)

	assert.Len(t, page.Items, 1)
	assert.Equal(t, []string{"p6"}, ids(page.Items))
	assert.Equal(t, "Page 2 of 2", page.Label())
	assert.Equal(t, 4, page.Filtered)
	assert.Equal(t, 7, page.Total)
	assert.True(t, page.HasPrev)
	assert.False(t, page.HasNext)
	assert.Equal(t, "Showing 1 of 4 products (out of 7 total)", page.Summary())
}

func TestFilterDateRangeIsInclusive(t *testing.T) {
	got := catalogview.Filter(catalog(), catalogview.Criteria{StartDate: "2024-01-02", EndDate: "2024-01-04"})
	assert.Equal(t, []string{"p2", "p3", "p4"}, ids(got))

	got = catalogview.Filter(catalog(), catalogview.Criteria{Status: "inactive", EndDate: "2024-01-05"})
	assert.Equal(t, []string{"p2", "p5"}, ids(got))
}

func TestFilterWithoutCriteriaKeepsEverything(t *testing.T) {
	c := catalogview.Criteria{}
	assert.False(t, c.Active())
	assert.Len(t, catalogview.Filter(catalog(), c), 7)
}

func TestPaginateClampsPageNumber(t *testing.T) {
	products := catalog()

	page := catalogview.Paginate(products, 9, 3)
	assert.Equal(t, 3, page.Number)
	assert.Equal(t, []string{"p7"}, ids(page.Items))

	page = catalogview.Paginate(products, 0, 3)
	assert.Equal(t, 1, page.Number)
	assert.False(t, page.HasPrev)
	assert.True(t, page.HasNext)
}

func TestPaginateEmptyList(t *testing.T) {
	page := catalogview.Paginate(nil, 1, 3)
	assert.Empty(t, page.Items)
	assert.Equal(t, "Page 1 of 1", page.Label())
	assert.False(t, page.HasNext)
}

func TestPaginateDefaultsPageSize(t *testing.T) {
	page := catalogview.Paginate(catalog(), 1, 0)
	assert.Equal(t, catalogview.DefaultPageSize, page.PageSize)
	assert.Len(t, page.Items, 3)
}

func TestCountAndRecent(t *testing.T) {
	products := catalog()
	assert.Equal(t, catalogview.Stats{Total: 7, Active: 4, Inactive: 3}, catalogview.Count(products))
	assert.Equal(t, []string{"p7", "p6"}, ids(catalogview.Recent(products, 2)))
	assert.Len(t, catalogview.Recent(products[:1], 2), 1)
}
