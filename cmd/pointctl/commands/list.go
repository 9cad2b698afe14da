package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// states: list the federative units offered by the region directory.
func statesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List state codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			states, err := appCtx.Directory.ListStates(cmd.Context())
			if err != nil {
				return err
			}
			for _, code := range states {
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}
}

// cities <uf>: list the cities of one state.
func citiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities <uf>",
		Short: "List the cities of a state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.TrimSpace(args[0])
			cities, err := appCtx.Directory.ListCities(cmd.Context(), code)
			if err != nil {
				return err
			}
			for _, name := range cities {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// items: list the collectable item catalog.
func itemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "items",
		Short: "List collectable item kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := appCtx.Catalog.ListCatalog(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", e.ID, e.Title)
			}
			return nil
		},
	}
}
