package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newFormsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "forms",
		Short: "List registered forms and configured order forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forms := a.service.ListForms()
			orderForms := a.source.OrderFormIDs()
			if asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"forms":      forms,
					"orderForms": orderForms,
				})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tGROUP\tLABEL\tEXPORT\tIMPORT")
			for _, f := range forms {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Key, f.Group, f.Label, yesNo(f.Export), yesNo(f.Import))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if len(orderForms) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\norder forms: %v\n", orderForms)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
