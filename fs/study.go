// Package fs provides file-based loading of study documents and the
// checklist definition.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pilot"
	"golang.org/x/sync/errgroup"
)

// Ensure StudyStore implements pilot.StudyLoader at compile time.
var _ pilot.StudyLoader = (*StudyStore)(nil)

// ChecklistFile is the name of the checklist definition inside a data directory.
const ChecklistFile = "checklist.json"

// StudyStore loads study documents from JSON files named etude-<version>.json.
type StudyStore struct {
	dir string
}

// NewStudyStore creates a new StudyStore reading from dir.
func NewStudyStore(dir string) *StudyStore {
	return &StudyStore{dir: dir}
}

// StudyPath returns the path of the file holding version.
func (s *StudyStore) StudyPath(version string) string {
	return filepath.Join(s.dir, "etude-"+version+".json")
}

// LoadStudies reads the documents for versions concurrently. Versions with
// no file are skipped; the returned documents keep the order of versions.
func (s *StudyStore) LoadStudies(ctx context.Context, versions []string) ([]*pilot.StudyDocument, error) {
	docs := make([]*pilot.StudyDocument, len(versions))

	g, ctx := errgroup.WithContext(ctx)
	for i, v := range versions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := s.loadStudy(v)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loaded := make([]*pilot.StudyDocument, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			loaded = append(loaded, doc)
		}
	}
	return loaded, nil
}

// loadStudy reads one study. A missing file yields a nil document.
func (s *StudyStore) loadStudy(version string) (*pilot.StudyDocument, error) {
	path := s.StudyPath(version)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	doc, err := DecodeStudy(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Version == "" {
		doc.Version = version
	}
	if doc.Version != version {
		return nil, pilot.Errorf(pilot.EINVALID, "%s: holds study %q, want %q", path, doc.Version, version)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeStudy decodes a study document and fingerprints its source.
func DecodeStudy(data []byte) (*pilot.StudyDocument, error) {
	var doc pilot.StudyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, pilot.Errorf(pilot.EINVALID, "invalid study JSON: %s", err)
	}
	doc.Checksum = Checksum(data)
	return &doc, nil
}

// Checksum returns the xxHash of data as a hex string.
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// LoadChecklist reads the checklist definition at path. A missing file
// yields an empty checklist.
func LoadChecklist(path string) (*pilot.Checklist, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &pilot.Checklist{}, nil
	}
	if err != nil {
		return nil, err
	}

	var checklist pilot.Checklist
	if err := json.Unmarshal(data, &checklist); err != nil {
		return nil, pilot.Errorf(pilot.EINVALID, "%s: invalid checklist JSON: %s", path, err)
	}
	return &checklist, nil
}
