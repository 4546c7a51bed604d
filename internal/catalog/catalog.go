package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"export-catalog-service/internal/domain"
)

// ErrProductNotFound is returned by overlay mutations targeting an id that
// does not exist in the merged view.
var ErrProductNotFound = errors.New("catalog: product not found")

// AllCategoryName is the pseudo-category whose count equals the total
// product count. It never appears in the source document.
const AllCategoryName = "All"

//go:embed data/products.json
var defaultFixture []byte

// document mirrors the catalog source file.
type document struct {
	Products   []domain.Product  `json:"products"`
	Categories []domain.Category `json:"categories"`
	Posts      []domain.BlogPost `json:"posts"`
}

// Catalog exposes the immutable product, category and blog-post lists loaded
// once at startup. It is never refetched and has no write path; the only
// mutation surface is the admin Overlay, which copies rather than mutates.
type Catalog struct {
	products   []domain.Product
	categories []domain.Category
	posts      []domain.BlogPost
	productIdx map[int64]int
	postIdx    map[int64]int
	vocab      []string
}

// Load parses a catalog document from raw JSON. Product ids are indexed
// last-wins; uniqueness is the document author's responsibility and is not
// enforced here.
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: failed to parse document: %w", err)
	}

	c := &Catalog{
		products:   doc.Products,
		categories: doc.Categories,
		posts:      doc.Posts,
		productIdx: make(map[int64]int, len(doc.Products)),
		postIdx:    make(map[int64]int, len(doc.Posts)),
	}
	for i := range c.products {
		c.productIdx[c.products[i].ID] = i
	}
	for i := range c.posts {
		c.postIdx[c.posts[i].ID] = i
	}
	c.vocab = buildVocabulary(c.products)
	return c, nil
}

// LoadFile loads a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: failed to read %s: %w", path, err)
	}
	return Load(data)
}

// LoadDefault loads the fixture embedded in the binary.
func LoadDefault() (*Catalog, error) {
	return Load(defaultFixture)
}

// Products returns a copy of the product list in catalog order. Callers may
// filter and sort the returned slice freely without aliasing the catalog.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Categories returns a copy of the category list in catalog order.
func (c *Catalog) Categories() []domain.Category {
	out := make([]domain.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Posts returns a copy of the blog-post list in catalog order.
func (c *Catalog) Posts() []domain.BlogPost {
	out := make([]domain.BlogPost, len(c.posts))
	copy(out, c.posts)
	return out
}

// ProductByID looks up a product by id.
func (c *Catalog) ProductByID(id int64) (domain.Product, bool) {
	i, ok := c.productIdx[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// PostByID looks up a blog post by id.
func (c *Catalog) PostByID(id int64) (domain.BlogPost, bool) {
	i, ok := c.postIdx[id]
	if !ok {
		return domain.BlogPost{}, false
	}
	return c.posts[i], true
}

// CategoryCount pairs a category with the number of products in it.
type CategoryCount struct {
	domain.Category
	Count int `json:"count"`
}

// CategoryCounts derives the category list used to populate the filter UI:
// the "All" pseudo-category first with the total count, then every declared
// category in document order. Products whose category matches no declared
// record are appended under their own name, so orphaned categories degrade
// to a visible count rather than disappearing.
func (c *Catalog) CategoryCounts() []CategoryCount {
	counts := make(map[string]int, len(c.categories))
	for i := range c.products {
		counts[c.products[i].Category]++
	}

	out := make([]CategoryCount, 0, len(c.categories)+1)
	out = append(out, CategoryCount{
		Category: domain.Category{Name: AllCategoryName},
		Count:    len(c.products),
	})
	seen := make(map[string]bool, len(c.categories))
	for _, cat := range c.categories {
		out = append(out, CategoryCount{Category: cat, Count: counts[cat.Name]})
		seen[cat.Name] = true
	}
	for i := range c.products {
		name := c.products[i].Category
		if !seen[name] {
			out = append(out, CategoryCount{
				Category: domain.Category{Name: name},
				Count:    counts[name],
			})
			seen[name] = true
		}
	}
	return out
}

const (
	minSuggestTermLen = 2
	maxSuggestions    = 6
	minVocabWordLen   = 3
)

var originSplitter = regexp.MustCompile(`[,\s]+`)

// buildVocabulary derives the suggestion vocabulary once per catalog load:
// lowercased words of at least three characters from product names and
// origins, plus each product's category.
func buildVocabulary(products []domain.Product) []string {
	seen := make(map[string]bool)
	var vocab []string
	add := func(term string) {
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		vocab = append(vocab, term)
	}

	for i := range products {
		p := &products[i]
		for _, word := range strings.Fields(strings.ToLower(p.Name)) {
			if len(word) >= minVocabWordLen {
				add(word)
			}
		}
		add(strings.ToLower(p.Category))
		if origin := p.Specs().Origin; origin != "" {
			for _, word := range originSplitter.Split(strings.ToLower(origin), -1) {
				if len(word) >= minVocabWordLen {
					add(word)
				}
			}
		}
	}
	return vocab
}

// Suggest returns up to six vocabulary entries containing the search term as
// a substring, excluding an exact match. Terms shorter than two characters
// produce no suggestions.
func (c *Catalog) Suggest(term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if len(term) < minSuggestTermLen {
		return nil
	}
	var out []string
	for _, entry := range c.vocab {
		if strings.Contains(entry, term) && entry != term {
			out = append(out, entry)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}
