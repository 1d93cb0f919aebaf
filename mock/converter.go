package mock

import "github.com/fwojciec/pilot"

var _ pilot.Converter = (*Converter)(nil)

// Converter is a mock implementation of pilot.Converter.
type Converter struct {
	ConvertFn        func(html string) (string, error)
	ConvertSectionFn func(s *pilot.Section) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

func (c *Converter) ConvertSection(s *pilot.Section) (string, error) {
	return c.ConvertSectionFn(s)
}
