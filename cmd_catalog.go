package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wildfunctions/equation_evolution/pkg/equations"
	"github.com/wildfunctions/equation_evolution/pkg/expr"
)

const maxEquationWidth = 60

func runListEquations(cmd *cobra.Command, _ []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tNODES\tEQUATION")
	for _, name := range equations.Names() {
		s, _ := equations.Lookup(name)
		tree, err := expr.Parse(s)
		if err != nil {
			return fmt.Errorf("equation %s: %w", name, err)
		}
		if !verbose && len(s) > maxEquationWidth {
			s = s[:maxEquationWidth-3] + "..."
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", name, tree.NodeCount(), s)
	}
	return tw.Flush()
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if storeBackend == "" {
		return errors.New("listing runs needs --store")
	}
	store, err := openStore(ctx, storeBackend, storePath)
	if err != nil {
		return err
	}
	defer closeStore(store)

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tREPRESENTATION\tBENIGN\tMALWARE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, humanize.Time(r.CreatedAt), r.Representation, r.BenignEquation, r.MalwareEquation)
	}
	return tw.Flush()
}
