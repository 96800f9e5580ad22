// Package search provides full-text search over the clause-template catalog,
// via Meilisearch when configured with an in-memory fallback otherwise.
package search

import "testament/api/internal/catalog"

// Result is a single catalog hit returned to the caller.
type Result struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	File        string `json:"file"`
	Description string `json:"description"`
}

// Query describes a catalog search request.
type Query struct {
	Text  string
	Limit int
}

// Response is the envelope returned by the catalog search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

func resultFromTemplate(t catalog.ClauseTemplate) Result {
	return Result{
		ID:          t.ID,
		Name:        t.Name,
		File:        t.File,
		Description: t.Description,
	}
}
