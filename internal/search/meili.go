package search

import (
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"

	"testament/api/internal/catalog"
)

const idxClauses = "testament_clauses"

// Meili indexes the clause catalog in Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures the clause index. The
// caller should proceed with the fallback when the instance is unreachable;
// the background monitor reconfigures the index if it comes back.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxClauses,
		PrimaryKey: "id",
	}); err != nil {
		log.Printf("search: create index %s (may already exist): %v", idxClauses, err)
	}

	searchable := []string{"name", "description", "id"}
	if _, err := m.client.Index(idxClauses).UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("search: update searchable attrs for %s: %v", idxClauses, err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// IndexCatalog pushes the full clause catalog into the index. The catalog is
// static, so this runs once at startup (and again on recovery).
func (m *Meili) IndexCatalog(templates []catalog.ClauseTemplate) error {
	if !m.healthy.Load() {
		return fmt.Errorf("meilisearch unhealthy")
	}
	docs := make([]Result, 0, len(templates))
	for _, t := range templates {
		docs = append(docs, resultFromTemplate(t))
	}
	if _, err := m.client.Index(idxClauses).AddDocuments(docs, nil); err != nil {
		m.healthy.Store(false)
		return fmt.Errorf("index clause catalog: %w", err)
	}
	return nil
}

// Search queries the clause index.
func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	resp, err := m.client.Index(idxClauses).Search(q.Text, &meili.SearchRequest{
		Limit: limit,
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch search: %w", err)
	}

	results := make([]Result, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var r Result
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		results = append(results, r)
	}
	return results, int(resp.EstimatedTotalHits), nil
}
