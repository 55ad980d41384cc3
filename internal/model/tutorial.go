package model

// Tutorial is a catalog entry. Content is opaque markdown.
type Tutorial struct {
	ID         string `yaml:"id" json:"id"`
	Title      string `yaml:"title" json:"title"`
	Category   string `yaml:"category" json:"category"`
	Difficulty string `yaml:"difficulty" json:"difficulty"`
	Content    string `yaml:"content" json:"content,omitempty"`
}

// Catalog provides read access to tutorials.
type Catalog interface {
	All() []Tutorial
	Get(id string) (Tutorial, bool)
}
