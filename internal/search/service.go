package search

import (
	"log"

	"testament/api/internal/catalog"
)

// Service is the facade that tries Meilisearch first and falls back to plain
// substring matching over the in-memory catalog.
type Service struct {
	meili   *Meili
	catalog *catalog.Catalog
}

// NewService creates a catalog search service. meili may be nil if
// Meilisearch is not configured.
func NewService(meili *Meili, cat *catalog.Catalog) *Service {
	return &Service{meili: meili, catalog: cat}
}

// Search tries Meilisearch if healthy, otherwise scans the catalog directly.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: results, Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to catalog scan: %v", err)
	}

	limit := q.Limit
	if limit == 0 {
		limit = 20
	}
	var results []Result
	total := 0
	for _, t := range s.catalog.Templates() {
		if !t.Match(q.Text) {
			continue
		}
		total++
		if len(results) < limit {
			results = append(results, resultFromTemplate(t))
		}
	}
	if results == nil {
		results = []Result{}
	}
	return Response{Results: results, Total: total, Query: q.Text}
}
