package main

import (
	"fmt"

	"github.com/fwojciec/pilot"
	"github.com/fwojciec/pilot/assistant"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	reply, err := deps.Assistant.Send(deps.Ctx, c.User, assistant.Request{
		Message:        c.Message,
		ConversationID: c.Conversation,
		Context:        c.Context,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pilot.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, reply.Response)
	fmt.Fprintf(deps.Stderr, "conversation: %s\n", reply.ConversationID)
	return nil
}

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	convs, err := deps.Assistant.History(deps.Ctx, c.User)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pilot.ErrorMessage(err))
		return err
	}

	if len(convs) == 0 {
		fmt.Fprintln(deps.Stdout, "No conversations found. Use 'pilot ask' to start one.")
		return nil
	}

	for _, conv := range convs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d messages  %s\n",
			conv.ID, conv.UpdatedAt.Format("2006-01-02 15:04"), conv.MessageCount, conv.Title)
	}
	return nil
}
