package http

import (
	"github.com/gofiber/fiber/v2"
)

// handleStudy handles GET /etude/:version. The study checksum is sent as an
// ETag so unchanged documents are not transferred again.
func (s *Server) handleStudy(c *fiber.Ctx) error {
	doc, err := s.Index.Document(c.Params("version"))
	if err != nil {
		return s.Error(c, err)
	}

	if doc.Checksum != "" {
		etag := `"` + doc.Checksum + `"`
		c.Set(fiber.HeaderETag, etag)
		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			return c.SendStatus(fiber.StatusNotModified)
		}
	}
	return c.JSON(doc)
}

// handleSection handles GET /etude/:version/section/:id.
func (s *Server) handleSection(c *fiber.Ctx) error {
	section, err := s.Index.FindSection(c.Params("version"), c.Params("id"))
	if err != nil {
		return s.Error(c, err)
	}
	return c.JSON(section)
}
