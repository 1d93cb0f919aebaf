package http

import (
	"encoding/json"

	"github.com/fwojciec/pilot"
	"github.com/gofiber/fiber/v2"
)

// ChecklistEntry is one response as reported by GET /api/checklist.
type ChecklistEntry struct {
	Value     pilot.ChecklistValue `json:"value"`
	UpdatedAt string               `json:"updated_at"`
}

// saveChecklistRequest is the body of PUT /api/checklist/:fieldId.
type saveChecklistRequest struct {
	Value any `json:"value"`
}

// handleChecklist handles GET /api/checklist, keyed by field ID.
func (s *Server) handleChecklist(c *fiber.Ctx) error {
	responses, err := s.Checklist.FindChecklistResponses(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return s.Error(c, err)
	}

	result := make(map[string]ChecklistEntry, len(responses))
	for _, r := range responses {
		result[r.FieldID] = ChecklistEntry{
			Value:     r.Value,
			UpdatedAt: r.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return c.JSON(result)
}

// handleChecklistProgress handles GET /api/checklist/progress.
func (s *Server) handleChecklistProgress(c *fiber.Ctx) error {
	responses, err := s.Checklist.FindChecklistResponses(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return s.Error(c, err)
	}

	def := s.ChecklistDef
	if def == nil {
		def = &pilot.Checklist{}
	}
	return c.JSON(def.Progress(responses))
}

// handleSaveChecklistResponse handles PUT /api/checklist/:fieldId.
func (s *Server) handleSaveChecklistResponse(c *fiber.Ctx) error {
	var req saveChecklistRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return s.Error(c, pilot.Errorf(pilot.EINVALID, "Requête invalide"))
	}

	value, err := pilot.NewChecklistValue(req.Value)
	if err != nil {
		return s.Error(c, err)
	}

	fieldID := c.Params("fieldId")
	resp := &pilot.ChecklistResponse{FieldID: fieldID, Value: value}
	if err := s.Checklist.SaveChecklistResponse(c.UserContext(), currentUser(c).ID, resp); err != nil {
		return s.Error(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "field_id": fieldID})
}

// handleDeleteChecklistResponse handles DELETE /api/checklist/:fieldId.
func (s *Server) handleDeleteChecklistResponse(c *fiber.Ctx) error {
	if err := s.Checklist.DeleteChecklistResponse(c.UserContext(), currentUser(c).ID, c.Params("fieldId")); err != nil {
		return s.Error(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
