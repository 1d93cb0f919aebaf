package pilot

import (
	"context"
	"strings"
)

// Versions lists the canonical study versions in declaration order.
// A search without an explicit version scans them in this order.
var Versions = []string{"v1", "v2"}

// MaxSearchResults caps the number of results returned by a search,
// across all scanned versions.
const MaxSearchResults = 20

// MinQueryLength is the shortest trimmed query that triggers a search.
const MinQueryLength = 2

// Result types reported in SearchResult.Type.
const (
	ResultTypeSection    = "section"
	ResultTypeSubSection = "sub-section"
)

// StudyDocument represents one version of the market study.
// It is immutable once loaded.
type StudyDocument struct {
	Version  string     `json:"version"`
	Title    string     `json:"titre,omitempty"`
	Sections []*Section `json:"sections"`

	// Checksum fingerprints the source the document was decoded from.
	Checksum string `json:"-"`
}

// Validate returns an error if the document contains invalid fields.
func (d *StudyDocument) Validate() error {
	if d.Version == "" {
		return Errorf(EINVALID, "study version required")
	}
	seen := make(map[string]bool)
	for _, s := range d.Sections {
		if err := s.validate(d.Version, seen); err != nil {
			return err
		}
		for _, ss := range s.SousSections {
			if len(ss.SousSections) > 0 {
				return Errorf(EINVALID, "study %s: section %q nests deeper than one level", d.Version, ss.ID)
			}
			if err := ss.validate(d.Version, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// Section is a titled content node of a study. Subsections are one level deep.
type Section struct {
	ID           string     `json:"id"`
	Numero       string     `json:"numero"`
	Titre        string     `json:"titre"`
	Contenu      string     `json:"contenu,omitempty"`
	SousSections []*Section `json:"sousSections,omitempty"`
}

func (s *Section) validate(version string, seen map[string]bool) error {
	if s.ID == "" {
		return Errorf(EINVALID, "study %s: section id required", version)
	}
	if seen[s.ID] {
		return Errorf(EINVALID, "study %s: duplicate section id %q", version, s.ID)
	}
	seen[s.ID] = true
	return nil
}

// matches reports whether the title or content contains the lowercased term.
func (s *Section) matches(term string) bool {
	return strings.Contains(strings.ToLower(s.Titre), term) ||
		strings.Contains(strings.ToLower(s.Contenu), term)
}

// SearchResult represents a section or subsection matching a query.
type SearchResult struct {
	Version   string `json:"version"`
	SectionID string `json:"sectionId"`
	ParentID  string `json:"parentId,omitempty"`
	Numero    string `json:"numero"`
	Titre     string `json:"titre"`
	Excerpt   string `json:"excerpt"`
	Type      string `json:"type"`
}

// StudyLoader loads study documents from their source.
type StudyLoader interface {
	// LoadStudies loads the documents for the given versions.
	// Versions with no source are skipped.
	LoadStudies(ctx context.Context, versions []string) ([]*StudyDocument, error)
}
