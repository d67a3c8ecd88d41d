package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/nanodraw/draw"
)

func (a *App) newResultCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "result <task-id>",
		Short: "Look up a generation task",
		Long: `Look up a generation task by id.

With --wait the lookup is repeated with backoff (draw.poll) until the task
finishes or fails.`,
		Args: cobra.ExactArgs(1),
		RunE: a.runResult,
	}
	cmd.Flags().BoolVar(&a.wait, "wait", false, "poll until the task finishes")
	return cmd
}

func (a *App) runResult(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	var out *draw.Outcome
	if a.wait {
		out, err = client.PollResult(ctx, args[0])
	} else {
		out, err = client.FetchResult(ctx, args[0])
	}
	if err != nil {
		return err
	}
	return a.printOutcome(out)
}
