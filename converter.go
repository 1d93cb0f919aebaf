package pilot

// Converter renders study content as Markdown.
type Converter interface {
	// Convert transforms the HTML content of a section into Markdown.
	Convert(html string) (string, error)

	// ConvertSection renders a whole section: its heading, its content and
	// a list of its subsections.
	ConvertSection(s *Section) (string, error)
}
