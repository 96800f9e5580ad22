// Package catalog holds the static list of clause templates available for
// insertion into a document.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ClauseTemplate is an immutable catalog entry. Identity is ID.
type ClauseTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	File        string `json:"file"`
	Description string `json:"description"`
}

// Catalog is the read-only set of clause templates plus the directory their
// DOCX files live in.
type Catalog struct {
	dir       string
	templates []ClauseTemplate
	byID      map[string]ClauseTemplate
}

// defaults is the built-in catalog, used when the clause directory carries no
// manifest of its own.
var defaults = []ClauseTemplate{
	{
		ID:          "revocation",
		Name:        "Revocation",
		File:        "Revocation.docx",
		Description: "A clause that revokes all previous wills and testamentary dispositions.",
	},
	{
		ID:          "definitions",
		Name:        "Definitions of Relationships",
		File:        "DefinitionsOfRelationships.docx",
		Description: "Defines family relationships and terms used in the document.",
	},
	{
		ID:          "familylaw",
		Name:        "Family Law Act",
		File:        "FamilyLawAct.docx",
		Description: "Clauses related to provisions of the Family Law Act.",
	},
	{
		ID:          "executors",
		Name:        "Appointment of Executors and Trustees",
		File:        "AppointmentOfExecutorsAndTrustees.docx",
		Description: "Appoints executors and trustees for the estate.",
	},
}

// Load builds a catalog from dir. If dir contains a manifest.json it defines
// the template list; otherwise the built-in defaults apply.
func Load(dir string) (*Catalog, error) {
	templates := defaults
	manifestPath := filepath.Join(dir, "manifest.json")
	data, err := os.ReadFile(manifestPath)
	switch {
	case err == nil:
		var parsed []ClauseTemplate
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse clause manifest: %w", err)
		}
		templates = parsed
	case errors.Is(err, os.ErrNotExist):
		// built-in defaults
	default:
		return nil, fmt.Errorf("read clause manifest: %w", err)
	}

	byID := make(map[string]ClauseTemplate, len(templates))
	for _, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("clause template with empty id (file %q)", t.File)
		}
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate clause template id %q", t.ID)
		}
		byID[t.ID] = t
	}
	return &Catalog{dir: dir, templates: templates, byID: byID}, nil
}

// Templates returns the catalog entries in declaration order.
func (c *Catalog) Templates() []ClauseTemplate {
	out := make([]ClauseTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// Lookup returns the template with the given id.
func (c *Catalog) Lookup(id string) (ClauseTemplate, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// ReadTemplate returns the DOCX bytes for a catalog entry.
func (c *Catalog) ReadTemplate(t ClauseTemplate) ([]byte, error) {
	name := filepath.Base(t.File)
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read clause template %s: %w", name, err)
	}
	return data, nil
}

// Match reports whether a template matches a free-text query. Used as the
// search fallback when Meilisearch is not configured.
func (t ClauseTemplate) Match(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Description), q) ||
		strings.Contains(strings.ToLower(t.ID), q)
}
