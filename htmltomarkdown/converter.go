// Package htmltomarkdown renders section content as Markdown.
package htmltomarkdown

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/pilot"
)

// Ensure Converter implements pilot.Converter at compile time.
var _ pilot.Converter = (*Converter)(nil)

// Converter renders study sections as Markdown using html-to-markdown.
// Tables are kept as GFM tables since the studies hold revenue figures.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown. Sections without content
// convert to an empty string.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", pilot.Errorf(pilot.EINVALID, "convert section content: %s", err)
	}

	return result, nil
}

// ConvertSection renders s as a Markdown document. Subsections are listed by
// number, title and ID so they can be looked up in turn.
func (c *Converter) ConvertSection(s *pilot.Section) (string, error) {
	body, err := c.Convert(s.Contenu)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s %s\n", s.Numero, s.Titre)
	if body != "" {
		fmt.Fprintf(&sb, "\n%s\n", body)
	}
	if len(s.SousSections) > 0 {
		sb.WriteString("\n")
		for _, ss := range s.SousSections {
			fmt.Fprintf(&sb, "- %s %s (%s)\n", ss.Numero, ss.Titre, ss.ID)
		}
	}
	return sb.String(), nil
}
