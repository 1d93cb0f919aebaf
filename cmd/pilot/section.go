package main

import (
	"fmt"

	"github.com/fwojciec/pilot"
)

// Run executes the section command.
func (c *SectionCmd) Run(deps *Dependencies) error {
	section, err := deps.Index.FindSection(c.Version, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pilot.ErrorMessage(err))
		return err
	}

	md, err := deps.Converter.ConvertSection(section)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pilot.ErrorMessage(err))
		return err
	}

	fmt.Fprint(deps.Stdout, md)
	return nil
}
