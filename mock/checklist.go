package mock

import (
	"context"

	"github.com/fwojciec/pilot"
)

var _ pilot.ChecklistService = (*ChecklistService)(nil)

// ChecklistService is a mock implementation of pilot.ChecklistService.
type ChecklistService struct {
	FindChecklistResponsesFn  func(ctx context.Context, userID string) ([]*pilot.ChecklistResponse, error)
	SaveChecklistResponseFn   func(ctx context.Context, userID string, resp *pilot.ChecklistResponse) error
	DeleteChecklistResponseFn func(ctx context.Context, userID, fieldID string) error
}

func (s *ChecklistService) FindChecklistResponses(ctx context.Context, userID string) ([]*pilot.ChecklistResponse, error) {
	return s.FindChecklistResponsesFn(ctx, userID)
}

func (s *ChecklistService) SaveChecklistResponse(ctx context.Context, userID string, resp *pilot.ChecklistResponse) error {
	return s.SaveChecklistResponseFn(ctx, userID, resp)
}

func (s *ChecklistService) DeleteChecklistResponse(ctx context.Context, userID, fieldID string) error {
	return s.DeleteChecklistResponseFn(ctx, userID, fieldID)
}
