package main

import (
	"fmt"

	"github.com/fwojciec/pilot"
)

// Run executes the user create command.
func (c *UserCreateCmd) Run(deps *Dependencies) error {
	user := &pilot.User{Email: c.Email, Name: c.Name}
	if err := deps.Users.CreateUser(deps.Ctx, user, c.Password); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pilot.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Created user %s (%s)\n", user.Email, user.ID)
	return nil
}
