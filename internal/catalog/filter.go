package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"export-catalog-service/internal/domain"
)

// SortField selects the comparison key for sorting filtered results.
type SortField string

const (
	SortByName     SortField = "name"
	SortByCategory SortField = "category"
	SortByFeatured SortField = "featured"
	SortByPremium  SortField = "premium"
)

// SortOrder selects ascending or descending order. Descending uniformly
// negates the comparator for every field, so "Featured First" is
// featured/desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Criteria is the full set of user-chosen predicates and the sort key. The
// zero value matches every product and keeps catalog order.
type Criteria struct {
	Search       string
	Categories   []string
	OnlyFeatured bool
	OnlyPremium  bool
	SortField    SortField
	SortOrder    SortOrder
}

// FilterSort returns the ordered subset of products matching all criteria.
// It never mutates its input and is deterministic for a given
// (products, criteria) pair; an empty result is a valid, silent outcome.
//
// The sort is stable: ties keep original catalog order. String fields use
// locale-aware collation so that accented variants sort adjacently.
func FilterSort(products []domain.Product, crit Criteria) []domain.Product {
	search := strings.ToLower(strings.TrimSpace(crit.Search))

	out := make([]domain.Product, 0, len(products))
	for i := range products {
		if matches(&products[i], search, &crit) {
			out = append(out, products[i])
		}
	}

	if crit.SortField == "" {
		return out
	}

	// A fresh collator per call: collators carry internal buffers and are
	// not safe for concurrent use across requests.
	col := collate.New(language.English, collate.IgnoreCase)
	desc := crit.SortOrder == SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		c := compareProducts(col, crit.SortField, &out[i], &out[j])
		if desc {
			c = -c
		}
		return c < 0
	})
	return out
}

// matches applies the conjunction of the search, category, featured and
// premium predicates. The cheap boolean checks run first.
func matches(p *domain.Product, search string, crit *Criteria) bool {
	if crit.OnlyFeatured && !p.Featured {
		return false
	}
	if crit.OnlyPremium && !p.Premium {
		return false
	}
	if len(crit.Categories) > 0 && !containsString(crit.Categories, p.Category) {
		return false
	}
	if search == "" {
		return true
	}
	specs := p.Specs()
	return containsFold(p.Name, search) ||
		containsFold(p.Description, search) ||
		containsFold(p.Category, search) ||
		containsFold(specs.Origin, search) ||
		containsFold(specs.Certification, search)
}

// containsFold reports whether s contains the already-lowercased term.
func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func compareProducts(col *collate.Collator, field SortField, a, b *domain.Product) int {
	switch field {
	case SortByName:
		return col.CompareString(a.Name, b.Name)
	case SortByCategory:
		return col.CompareString(a.Category, b.Category)
	case SortByFeatured:
		return compareBool(a.Featured, b.Featured)
	case SortByPremium:
		return compareBool(a.Premium, b.Premium)
	}
	return 0
}

// compareBool orders false before true ascending; the uniform sign flip in
// FilterSort makes descending put true first.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}
