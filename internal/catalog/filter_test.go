package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"export-catalog-service/internal/domain"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{
			ID: 1, Name: "Turmeric Powder", Category: "Spices",
			Description: "High-curcumin turmeric from Erode",
			Featured:    true, Premium: true,
			Specifications: &domain.Specifications{
				Origin:        "Erode, Tamil Nadu",
				Certification: "FSSAI, Organic India",
			},
		},
		{
			ID: 2, Name: "Makhana", Category: "Snacks",
			Description: "Premium fox nuts",
			Featured:    true,
			Specifications: &domain.Specifications{
				Origin: "Bihar",
			},
		},
		{
			ID: 3, Name: "Basmati Rice", Category: "Grains & Pulses",
			Description: "Long-grain aromatic rice",
			Premium:     true,
		},
		{
			ID: 4, Name: "Cumin Seeds", Category: "Spices",
			Description: "Bold cumin seeds",
			// No specifications on purpose: matching must tolerate nil.
		},
	}
}

func productIDs(products []domain.Product) []int64 {
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func TestFilterSort_NoCriteriaKeepsCatalogOrder(t *testing.T) {
	products := sampleProducts()
	got := FilterSort(products, Criteria{})
	assert.Equal(t, []int64{1, 2, 3, 4}, productIDs(got))
}

func TestFilterSort_DoesNotMutateInput(t *testing.T) {
	products := sampleProducts()
	FilterSort(products, Criteria{SortField: SortByName, SortOrder: SortDesc})
	assert.Equal(t, []int64{1, 2, 3, 4}, productIDs(products), "input slice must keep its order")
}

func TestFilterSort_Idempotent(t *testing.T) {
	products := sampleProducts()
	crit := Criteria{Search: "spices", SortField: SortByName, SortOrder: SortAsc}
	first := FilterSort(products, crit)
	second := FilterSort(first, crit)
	assert.Equal(t, first, second)
}

func TestFilterSort_SearchMatchesAcrossFields(t *testing.T) {
	products := sampleProducts()

	testCases := []struct {
		name   string
		search string
		want   []int64
	}{
		{"by product name", "makh", []int64{2}},
		{"case insensitive", "MAKH", []int64{2}},
		{"by description", "fox nuts", []int64{2}},
		{"by category", "snack", []int64{2}},
		{"by origin", "erode", []int64{1}},
		{"by certification", "fssai", []int64{1}},
		{"no match is a valid empty result", "quinoa", []int64{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterSort(products, Criteria{Search: tc.search})
			assert.Equal(t, tc.want, productIDs(got))
		})
	}
}

func TestFilterSort_CategoryMembership(t *testing.T) {
	products := sampleProducts()

	got := FilterSort(products, Criteria{Categories: []string{"Spices"}})
	assert.Equal(t, []int64{1, 4}, productIDs(got))

	got = FilterSort(products, Criteria{Categories: []string{"Spices", "Snacks"}})
	assert.Equal(t, []int64{1, 2, 4}, productIDs(got))

	// Category match is exact, not substring.
	got = FilterSort(products, Criteria{Categories: []string{"Spice"}})
	assert.Empty(t, got)
}

func TestFilterSort_FeaturedAndPremiumFlags(t *testing.T) {
	products := sampleProducts()

	featured := FilterSort(products, Criteria{OnlyFeatured: true})
	for _, p := range featured {
		assert.True(t, p.Featured)
	}
	assert.Equal(t, []int64{1, 2}, productIDs(featured))

	// Flags are conjunctive with each other and with search.
	both := FilterSort(products, Criteria{OnlyFeatured: true, OnlyPremium: true})
	assert.Equal(t, []int64{1}, productIDs(both))

	withSearch := FilterSort(products, Criteria{Search: "makh", OnlyFeatured: true})
	assert.Equal(t, []int64{2}, productIDs(withSearch))
}

func TestFilterSort_SortByName(t *testing.T) {
	products := sampleProducts()

	asc := FilterSort(products, Criteria{SortField: SortByName, SortOrder: SortAsc})
	assert.Equal(t, []int64{3, 4, 2, 1}, productIDs(asc), "Basmati, Cumin, Makhana, Turmeric")

	desc := FilterSort(products, Criteria{SortField: SortByName, SortOrder: SortDesc})

	// Descending by name is the exact reverse of ascending when names are unique.
	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i].ID, desc[len(desc)-1-i].ID)
	}
}

func TestFilterSort_SortByBooleanFields(t *testing.T) {
	products := sampleProducts()

	// Ascending: false sorts before true; ties keep catalog order.
	asc := FilterSort(products, Criteria{SortField: SortByFeatured, SortOrder: SortAsc})
	assert.Equal(t, []int64{3, 4, 1, 2}, productIDs(asc))

	// Descending negates uniformly: true first, ties still in catalog order.
	desc := FilterSort(products, Criteria{SortField: SortByFeatured, SortOrder: SortDesc})
	assert.Equal(t, []int64{1, 2, 3, 4}, productIDs(desc))

	descPremium := FilterSort(products, Criteria{SortField: SortByPremium, SortOrder: SortDesc})
	assert.Equal(t, []int64{1, 3, 2, 4}, productIDs(descPremium))
}

func TestFilterSort_StableOnCategoryTies(t *testing.T) {
	products := sampleProducts()
	got := FilterSort(products, Criteria{SortField: SortByCategory, SortOrder: SortAsc})
	// Grains & Pulses, Snacks, then the two Spices entries in catalog order.
	assert.Equal(t, []int64{3, 2, 1, 4}, productIDs(got))
}

func TestFilterSort_NilSpecificationsSafe(t *testing.T) {
	products := []domain.Product{
		{ID: 10, Name: "Plain", Category: "Misc"},
	}
	assert.NotPanics(t, func() {
		FilterSort(products, Criteria{Search: "anything"})
	})
}
