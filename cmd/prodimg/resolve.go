package main

import (
	"fmt"

	"github.com/fwojciec/prodimg"
	"github.com/fwojciec/prodimg/resolve"
)

// Run executes the resolve command.
func (c *ResolveCmd) Run(deps *Dependencies) error {
	filter := prodimg.MachineFilter{Limit: c.Limit}
	if c.Brand != "" {
		filter.Brand = &c.Brand
	}
	if c.Model != "" {
		filter.Model = &c.Model
	}

	opts := resolve.Options{
		Filter:         filter,
		RebuildMissing: c.RebuildMissing,
		RefreshBad:     c.RefreshBad,
		Force:          c.Force,
		Reset:          c.Reset,
	}

	progress := func(event resolve.ProgressEvent) {
		switch event.Type {
		case resolve.ProgressStarted:
			if event.Total == 0 {
				fmt.Fprintln(deps.Stdout, "No machines needing images.")
			} else {
				fmt.Fprintf(deps.Stdout, "Processing %d machines...\n", event.Total)
			}
		case resolve.ProgressResolved:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s via %s\n", event.Completed, event.Total, event.Label, event.Source)
		case resolve.ProgressNoCandidate:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s: no image found\n", event.Completed, event.Total, event.Label)
		case resolve.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  [%d/%d] %s failed: %v\n", event.Completed, event.Total, event.Label, event.Error)
		}
	}

	summary, err := deps.Resolver.ResolveAll(deps.Ctx, opts, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", prodimg.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Resolved %d, no candidate %d, failed %d, skipped %d\n",
		summary.Resolved, summary.NoCandidate, summary.Failed, summary.Skipped)

	return nil
}
