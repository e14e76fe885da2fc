package grounding

import "context"

// SearchResult is the answer body and its grounding citations, in provider order.
type SearchResult struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// Source is a single citation. Either field may be empty when the provider omits it.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Searcher performs a grounded search for a free-text research task.
type Searcher interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// SearcherFunc adapts a plain function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string) (*SearchResult, error)

func (f SearcherFunc) Search(ctx context.Context, query string) (*SearchResult, error) {
	return f(ctx, query)
}
