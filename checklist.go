package pilot

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Checklist value kinds.
const (
	ValuePrimitive  = "primitive"
	ValueStructured = "structured"
)

// ChecklistValue is a stored checklist answer. Structured values hold their
// JSON encoding in Raw; primitive values hold the text itself.
type ChecklistValue struct {
	Kind string
	Raw  string
}

// PrimitiveValue returns a ChecklistValue holding plain text.
func PrimitiveValue(s string) ChecklistValue {
	return ChecklistValue{Kind: ValuePrimitive, Raw: s}
}

// NewChecklistValue builds a value from a decoded JSON input. Strings,
// numbers and booleans are primitive; objects and arrays are structured.
func NewChecklistValue(v any) (ChecklistValue, error) {
	switch v := v.(type) {
	case nil:
		return PrimitiveValue(""), nil
	case string:
		return PrimitiveValue(v), nil
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return ChecklistValue{}, Errorf(EINVALID, "invalid checklist value: %s", err)
		}
		return ChecklistValue{Kind: ValueStructured, Raw: string(b)}, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ChecklistValue{}, Errorf(EINVALID, "invalid checklist value: %s", err)
		}
		return PrimitiveValue(string(b)), nil
	}
}

// IsEmpty reports whether the value counts as unanswered.
func (v ChecklistValue) IsEmpty() bool {
	return strings.TrimSpace(v.Raw) == ""
}

// String returns the raw text of the value.
func (v ChecklistValue) String() string {
	return v.Raw
}

// MarshalJSON encodes structured values as JSON and primitive values as strings.
func (v ChecklistValue) MarshalJSON() ([]byte, error) {
	if v.Kind == ValueStructured && json.Valid([]byte(v.Raw)) {
		return []byte(v.Raw), nil
	}
	return json.Marshal(v.Raw)
}

// ChecklistResponse is a user's answer to one checklist field.
type ChecklistResponse struct {
	FieldID   string         `json:"fieldId"`
	Value     ChecklistValue `json:"value"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ChecklistService represents a service for managing checklist responses.
type ChecklistService interface {
	// FindChecklistResponses retrieves all of a user's responses.
	FindChecklistResponses(ctx context.Context, userID string) ([]*ChecklistResponse, error)

	// SaveChecklistResponse creates or replaces the response to a field.
	SaveChecklistResponse(ctx context.Context, userID string, resp *ChecklistResponse) error

	// DeleteChecklistResponse removes the response to a field.
	DeleteChecklistResponse(ctx context.Context, userID, fieldID string) error
}

// Priority of checklist sections whose pending fields are surfaced first.
const PriorityCritical = "critique"

// MaxCriticalActions caps the pending critical fields reported by Progress.
const MaxCriticalActions = 5

// Checklist is the definition of the fields a user fills in.
type Checklist struct {
	Sections []*ChecklistSection `json:"sections"`
}

// ChecklistSection groups related checklist fields.
type ChecklistSection struct {
	ID       string            `json:"id"`
	Titre    string            `json:"titre"`
	Priorite string            `json:"priorite,omitempty"`
	Fields   []*ChecklistField `json:"fields"`
}

// ChecklistField is a single question of the checklist.
type ChecklistField struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Suffix string `json:"suffix,omitempty"`
}

// ChecklistProgress summarizes how much of the checklist is answered.
type ChecklistProgress struct {
	Total           int              `json:"total"`
	Completed       int              `json:"completed"`
	Percentage      int              `json:"percentage"`
	CriticalActions []CriticalAction `json:"criticalActions"`
}

// CriticalAction is an unanswered field of a critical section.
type CriticalAction struct {
	FieldID string `json:"fieldId"`
	Label   string `json:"label"`
	Section string `json:"section"`
}

// Progress computes completion statistics for responses against the checklist.
func (c *Checklist) Progress(responses []*ChecklistResponse) ChecklistProgress {
	answered := make(map[string]bool, len(responses))
	for _, r := range responses {
		if !r.Value.IsEmpty() {
			answered[r.FieldID] = true
		}
	}

	p := ChecklistProgress{CriticalActions: []CriticalAction{}}
	for _, s := range c.Sections {
		for _, f := range s.Fields {
			p.Total++
			if answered[f.ID] {
				p.Completed++
				continue
			}
			if s.Priorite == PriorityCritical && len(p.CriticalActions) < MaxCriticalActions {
				p.CriticalActions = append(p.CriticalActions, CriticalAction{
					FieldID: f.ID,
					Label:   f.Label,
					Section: s.Titre,
				})
			}
		}
	}
	if p.Total > 0 {
		p.Percentage = (p.Completed*100 + p.Total/2) / p.Total
	}
	return p
}
