package main

import (
	"fmt"

	"github.com/fwojciec/prodimg"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := prodimg.MachineFilter{Limit: c.Limit}
	if c.Brand != "" {
		filter.Brand = &c.Brand
	}
	if c.Model != "" {
		filter.Model = &c.Model
	}

	machines, err := deps.Machines.FindMachines(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", prodimg.ErrorMessage(err))
		return err
	}

	if len(machines) == 0 {
		fmt.Fprintln(deps.Stdout, "No machines found.")
		return nil
	}

	for _, m := range machines {
		status := "-"
		if m.LocalImagePath != "" {
			status = m.LocalImagePath
		}
		fmt.Fprintf(deps.Stdout, "%d  %s  %s  %s\n", m.ID, m.Brand, m.Model, status)
	}

	return nil
}
