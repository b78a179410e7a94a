package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/sheetmap/internal/core"
	"github.com/JonMunkholm/sheetmap/internal/workbook"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		formKey     string
		mappingFile string
		headers     bool
		preview     bool
		letters     bool
		skip        int
		require     string
		sheetKey    string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Read a workbook into JSON records",
		Long: `Read an xlsx, csv or tab-separated file and print its records as JSON.

Header labels become record keys. --form applies the label map of a
registered form; --mapping adds labels from a YAML file (label: key).
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if letters && (headers || preview) {
				return fmt.Errorf("--letters cannot be combined with --headers or --preview")
			}

			in, size, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			src := workbook.NewSource(in, size)
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch {
			case headers:
				h, err := a.service.ImportHeaders(ctx, src)
				if err != nil {
					return userError(cmd, err)
				}
				return printJSON(out, h)

			case letters:
				recs, err := a.service.ImportLetters(ctx, src, core.LetterOptions{
					SkipRows: skip,
					Require:  require,
					SheetKey: sheetKey,
				})
				if err != nil {
					return userError(cmd, err)
				}
				return printJSON(out, recs)
			}

			req := core.ImportRequest{FormKey: formKey}
			if mappingFile != "" {
				if req.Mapping, err = loadMapping(mappingFile); err != nil {
					return err
				}
			}

			if preview {
				p, err := a.service.PreviewImport(ctx, src, req)
				if err != nil {
					return userError(cmd, err)
				}
				return printJSON(out, p)
			}

			res, err := a.service.Import(ctx, src, req)
			if err != nil {
				return userError(cmd, err)
			}
			return printJSON(out, res)
		},
	}

	f := cmd.Flags()
	f.StringVar(&formKey, "form", "", "registered form whose header labels to apply")
	f.StringVar(&mappingFile, "mapping", "", "YAML file mapping header labels to record keys")
	f.BoolVar(&headers, "headers", false, "print only the header labels")
	f.BoolVar(&preview, "preview", false, "print counts, samples and byte budget problems instead of all records")
	f.BoolVar(&letters, "letters", false, "key records by column letter instead of header label")
	f.IntVar(&skip, "skip", 0, "with --letters: leading rows to drop on every sheet")
	f.StringVar(&require, "require", "", "with --letters: keep only rows with a value in this column")
	f.StringVar(&sheetKey, "sheet-key", "", "with --letters: record key that receives the sheet name")
	return cmd
}

// loadMapping reads a label: key YAML map.
func loadMapping(path string) (core.LabelMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	var m core.LabelMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mapping %s: %w", path, err)
	}
	return m, nil
}
