package mock

import (
	"context"

	"github.com/fwojciec/pilot"
)

var _ pilot.StudyLoader = (*StudyLoader)(nil)

// StudyLoader is a mock implementation of pilot.StudyLoader.
type StudyLoader struct {
	LoadStudiesFn func(ctx context.Context, versions []string) ([]*pilot.StudyDocument, error)
}

func (l *StudyLoader) LoadStudies(ctx context.Context, versions []string) ([]*pilot.StudyDocument, error) {
	return l.LoadStudiesFn(ctx, versions)
}
