package domain

// Category represents one product category in the catalog.
// The json tags correspond to the fields in the catalog source document.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// Specifications holds the optional trade details of a product. Every field
// may be absent in the source data; consumers treat missing values as empty
// strings and never fail on them.
type Specifications struct {
	Origin        string `json:"origin,omitempty"`
	MinOrder      string `json:"minOrder,omitempty"`
	Packaging     string `json:"packaging,omitempty"`
	Certification string `json:"certification,omitempty"`
}

// ProductImage is one entry of the tag-keyed detail image set.
type ProductImage struct {
	URL         string `json:"url"`
	Alt         string `json:"alt,omitempty"`
	Description string `json:"description,omitempty"`
}

// ImageTags is the fixed set of detail image tags a product may carry.
var ImageTags = []string{"farming", "processing", "final", "extra"}

// Product represents one exportable good in the catalog.
//
// Price is a display string, not a number: "On Request" is a valid value and
// no arithmetic is ever performed on it. Image is the mandatory fallback
// picture; Images is an optional tag-keyed enhancement on top of it.
type Product struct {
	ID             int64                   `json:"id"`
	Name           string                  `json:"name"`
	Category       string                  `json:"category"`
	Description    string                  `json:"description"`
	Price          string                  `json:"price"`
	Featured       bool                    `json:"featured"`
	Premium        bool                    `json:"premium"`
	Image          string                  `json:"image,omitempty"`
	Images         map[string]ProductImage `json:"images,omitempty"`
	Specifications *Specifications         `json:"specifications,omitempty"`
}

// Specs returns the product's specifications, or a zero value when the
// nested record is absent. Field access through Specs never panics.
func (p *Product) Specs() Specifications {
	if p.Specifications == nil {
		return Specifications{}
	}
	return *p.Specifications
}

// ImageFor resolves the detail image for a tag. When the tag has no entry
// the single fallback Image URL is used, so callers always get something
// renderable even for products that only carry the flat image field.
func (p *Product) ImageFor(tag string) ProductImage {
	if img, ok := p.Images[tag]; ok && img.URL != "" {
		return img
	}
	return ProductImage{URL: p.Image, Alt: p.Name}
}
