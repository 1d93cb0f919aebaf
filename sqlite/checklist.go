package sqlite

import (
	"context"

	"github.com/fwojciec/pilot"
)

// Compile-time interface verification.
var _ pilot.ChecklistService = (*ChecklistService)(nil)

// ChecklistService implements pilot.ChecklistService using SQLite.
// Each response stores the kind of its value next to the raw text so it is
// decoded once when read.
type ChecklistService struct {
	db *DB
}

// NewChecklistService creates a new ChecklistService.
func NewChecklistService(db *DB) *ChecklistService {
	return &ChecklistService{db: db}
}

// FindChecklistResponses retrieves all of a user's responses in field order.
func (s *ChecklistService) FindChecklistResponses(ctx context.Context, userID string) ([]*pilot.ChecklistResponse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT field_id, kind, value, updated_at
		FROM checklist_responses
		WHERE user_id = ?
		ORDER BY field_id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var responses []*pilot.ChecklistResponse
	for rows.Next() {
		var resp pilot.ChecklistResponse
		var updatedAt string

		if err := rows.Scan(&resp.FieldID, &resp.Value.Kind, &resp.Value.Raw, &updatedAt); err != nil {
			return nil, err
		}
		if resp.Value.Kind != pilot.ValueStructured {
			resp.Value.Kind = pilot.ValuePrimitive
		}

		resp.UpdatedAt, err = parseTime(updatedAt, "updated_at")
		if err != nil {
			return nil, err
		}

		responses = append(responses, &resp)
	}

	return responses, rows.Err()
}

// SaveChecklistResponse creates or replaces the response to a field.
func (s *ChecklistService) SaveChecklistResponse(ctx context.Context, userID string, resp *pilot.ChecklistResponse) error {
	if userID == "" {
		return pilot.Errorf(pilot.EINVALID, "user ID required")
	}
	if resp.FieldID == "" {
		return pilot.Errorf(pilot.EINVALID, "field ID required")
	}
	if resp.Value.Kind == "" {
		resp.Value.Kind = pilot.ValuePrimitive
	}

	resp.UpdatedAt = now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checklist_responses (user_id, field_id, kind, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, field_id)
		DO UPDATE SET kind = excluded.kind, value = excluded.value, updated_at = excluded.updated_at
	`, userID, resp.FieldID, resp.Value.Kind, resp.Value.Raw, formatTime(resp.UpdatedAt))

	return err
}

// DeleteChecklistResponse removes the response to a field.
func (s *ChecklistService) DeleteChecklistResponse(ctx context.Context, userID, fieldID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM checklist_responses WHERE user_id = ? AND field_id = ?", userID, fieldID)
	return err
}
