package main

import (
	"fmt"

	"github.com/fwojciec/pilot"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	results, err := deps.Index.Search(c.Query, c.Version)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pilot.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results.")
		return nil
	}

	for _, r := range results {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s %s\n", r.Version, r.SectionID, r.Numero, r.Titre)
		if r.Excerpt != "" {
			fmt.Fprintf(deps.Stdout, "    %s\n", r.Excerpt)
		}
	}
	return nil
}
