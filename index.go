package pilot

import (
	"context"
	"slices"
	"strings"
)

// Index holds the loaded study documents and answers lookups and searches.
// It is read-only after construction and safe for concurrent use.
type Index struct {
	docs     map[string]*StudyDocument
	versions []string
}

// NewIndex creates an Index over docs. Canonical versions come first in
// declaration order, followed by any other version in the order given.
func NewIndex(docs ...*StudyDocument) *Index {
	idx := &Index{docs: make(map[string]*StudyDocument, len(docs))}
	for _, doc := range docs {
		idx.docs[doc.Version] = doc
	}
	idx.versions = append(idx.versions, Versions...)
	for _, doc := range docs {
		if !slices.Contains(idx.versions, doc.Version) {
			idx.versions = append(idx.versions, doc.Version)
		}
	}
	return idx
}

// LoadIndex loads the canonical study versions through loader and indexes them.
func LoadIndex(ctx context.Context, loader StudyLoader) (*Index, error) {
	docs, err := loader.LoadStudies(ctx, Versions)
	if err != nil {
		return nil, err
	}
	return NewIndex(docs...), nil
}

// Versions returns the versions that have a loaded document, in search order.
func (idx *Index) Versions() []string {
	var versions []string
	for _, v := range idx.versions {
		if _, ok := idx.docs[v]; ok {
			versions = append(versions, v)
		}
	}
	return versions
}

// Document returns the study document for version.
// Returns ENOTFOUND if the version is not loaded.
func (idx *Index) Document(version string) (*StudyDocument, error) {
	doc, ok := idx.docs[version]
	if !ok {
		return nil, Errorf(ENOTFOUND, "study %q not found", version)
	}
	return doc, nil
}

// FindSection returns the section or subsection with the given id.
// Returns ENOTFOUND if the version or the section does not exist.
func (idx *Index) FindSection(version, id string) (*Section, error) {
	doc, err := idx.Document(version)
	if err != nil {
		return nil, err
	}
	for _, s := range doc.Sections {
		if s.ID == id {
			return s, nil
		}
		for _, ss := range s.SousSections {
			if ss.ID == id {
				return ss, nil
			}
		}
	}
	return nil, Errorf(ENOTFOUND, "section %q not found in study %s", id, version)
}

// Search returns the sections and subsections whose title or content
// contains query, case-insensitively. An empty version searches every
// canonical version in order. Results follow document order and are capped
// at MaxSearchResults overall.
//
// A query shorter than MinQueryLength after trimming yields no results.
// Returns ENOTFOUND if an explicit version is not loaded; without a version,
// canonical versions that are not loaded are skipped.
func (idx *Index) Search(query, version string) ([]SearchResult, error) {
	term := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(term)) < MinQueryLength {
		return []SearchResult{}, nil
	}

	versions := idx.versions
	if version != "" {
		if _, err := idx.Document(version); err != nil {
			return nil, err
		}
		versions = []string{version}
	}

	results := []SearchResult{}
	for _, v := range versions {
		doc, ok := idx.docs[v]
		if !ok {
			continue
		}
		for _, s := range doc.Sections {
			if s.matches(term) {
				results = append(results, SearchResult{
					Version:   v,
					SectionID: s.ID,
					Numero:    s.Numero,
					Titre:     s.Titre,
					Excerpt:   Excerpt(s.Contenu, term, DefaultExcerptLength),
					Type:      ResultTypeSection,
				})
			}
			for _, ss := range s.SousSections {
				if !ss.matches(term) {
					continue
				}
				results = append(results, SearchResult{
					Version:   v,
					SectionID: ss.ID,
					ParentID:  s.ID,
					Numero:    ss.Numero,
					Titre:     ss.Titre,
					Excerpt:   Excerpt(ss.Contenu, term, DefaultExcerptLength),
					Type:      ResultTypeSubSection,
				})
			}
		}
	}

	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}
	return results, nil
}
