package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/JonMunkholm/sheetmap/internal/core"
	"github.com/spf13/cobra"
)

// exportFlags are shared by export and orders.
type exportFlags struct {
	in       string
	out      string
	filename string
}

func (e *exportFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&e.in, "in", "-", `JSON file with an array of records ("-" for stdin)`)
	f.StringVar(&e.out, "out", "", "output xlsx path (default <download name>.xlsx)")
	f.StringVar(&e.filename, "filename", "", "download name, without extension")
}

func newExportCmd(a *app) *cobra.Command {
	var (
		ef     exportFlags
		assort string
		malls  bool
	)

	cmd := &cobra.Command{
		Use:   "export <form>",
		Short: "Write JSON records through a registered form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := readRecords(cmd, ef.in)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			stats, err := a.service.Export(cmd.Context(), &buf, args[0], core.ExportOptions{
				AssortCode: assort,
				WithMalls:  malls,
				Filename:   ef.filename,
			}, recs)
			if err != nil {
				return userError(cmd, err)
			}
			return writeWorkbook(cmd, ef.out, stats, &buf)
		},
	}

	ef.bind(cmd)
	cmd.Flags().StringVar(&assort, "assort", "", "assortment code selecting the notify columns")
	cmd.Flags().BoolVar(&malls, "malls", false, "append one product id column per mall")
	return cmd
}

func newOrdersCmd(a *app) *cobra.Command {
	var ef exportFlags

	cmd := &cobra.Command{
		Use:   "orders <form-id>",
		Short: "Write JSON order records through a stored order download form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid order form id %q", args[0])
			}
			recs, err := readRecords(cmd, ef.in)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			stats, err := a.service.ExportOrders(cmd.Context(), &buf, id, ef.filename, recs)
			if err != nil {
				return userError(cmd, err)
			}
			return writeWorkbook(cmd, ef.out, stats, &buf)
		},
	}

	ef.bind(cmd)
	return cmd
}

// readRecords decodes a JSON array of records.
func readRecords(cmd *cobra.Command, path string) ([]core.Record, error) {
	in, _, err := openInput(cmd, path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var recs []core.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	return recs, nil
}

// writeWorkbook saves a finished export and reports it on stdout.
func writeWorkbook(cmd *cobra.Command, out string, stats core.ExportStats, buf *bytes.Buffer) error {
	if out == "" {
		out = stats.Filename
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d rows, %d columns", out, stats.Rows, stats.Columns)
	if stats.Grouped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), ", %d grouped", stats.Grouped)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
