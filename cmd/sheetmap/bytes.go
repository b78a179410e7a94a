package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/sheetmap/internal/textutil"
	"github.com/spf13/cobra"
)

func newBytesCmd() *cobra.Command {
	var budget int

	cmd := &cobra.Command{
		Use:   "bytes [text]",
		Short: "Measure text against a byte budget",
		Long: `Count text the way legacy mall fields are limited: each UTF-16 unit
costs 1 byte below U+0080, 2 below U+0800 and 3 otherwise. Reads stdin when
no text is given.`,
		Args: cobra.MaximumNArgs(1),
		// Budget checks need no configuration or forms.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = strings.TrimRight(string(data), "\r\n")
			}
			if budget <= 0 {
				return fmt.Errorf("--max must be positive, got %d", budget)
			}

			b := textutil.CheckBudget(text, budget)
			return printJSON(cmd.OutOrStdout(), struct {
				textutil.Budget
				Units int `json:"units"`
			}{b, textutil.UnitLength(text)})
		},
	}

	cmd.Flags().IntVar(&budget, "max", textutil.DefaultFieldBudget, "byte budget")
	return cmd
}
