package domain

// BlogPost is one article on the export-business blog. Date and ReadTime are
// display strings taken verbatim from the catalog source document.
type BlogPost struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt,omitempty"`
	Content  string   `json:"content"`
	Category string   `json:"category,omitempty"`
	Author   string   `json:"author,omitempty"`
	Date     string   `json:"date,omitempty"`
	ReadTime string   `json:"readTime,omitempty"`
	Image    string   `json:"image,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}
