package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/sheetmap/internal/config"
	"github.com/JonMunkholm/sheetmap/internal/core"
	"github.com/JonMunkholm/sheetmap/internal/logging"
	"github.com/JonMunkholm/sheetmap/internal/store"
	"github.com/JonMunkholm/sheetmap/internal/workbook"
	"github.com/spf13/cobra"
)

// app holds what the subcommands share. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	formsFile string
	logLevel  string

	cfg     *config.Config
	service *core.Service
	source  *store.YAMLStore
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "sheetmap",
		Short:         "Import and export back-office spreadsheets",
		Long:          `sheetmap reads uploaded workbooks into keyed JSON records and writes records back out through the registered export forms.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.formsFile, "forms", "", "YAML file with order forms and dynamic columns (default $EXPORT_FORMS_FILE)")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL)")

	root.AddCommand(
		newFormsCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newOrdersCmd(a),
		newBytesCmd(),
	)
	return root
}

// setup loads configuration, routes logs to stderr and builds the service.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.formsFile != "" {
		cfg.Export.FormsFile = a.formsFile
	}
	logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	cmd.SetContext(core.WithClient(cmd.Context(), core.Client{Origin: "cli"}))

	if cfg.Export.FormsFile != "" {
		a.source, err = store.LoadYAML(cfg.Export.FormsFile)
	} else {
		a.source, err = store.ParseYAML(nil)
	}
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.service = core.NewService(core.ServiceConfig{
		Decode: workbook.Options{
			CSVSheetName:  cfg.Import.CSVSheetName,
			LegacyCharset: cfg.Import.LegacyCharset,
		},
		MaxFileSize: cfg.Import.MaxFileSize,
		Writer: workbook.XLSXWriter{
			SheetName:      cfg.Export.SheetName,
			HighlightColor: cfg.Export.HighlightColor,
		},
		MaxConcurrent: 1,
		MaxWait:       cfg.Job.MaxWaitTime,
	}, a.source)
	return nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// openInput opens path for reading; "-" is stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, int64, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), -1, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, st.Size(), nil
}

// userError turns a kinded service failure into the message shown to the
// user, keeping the technical cause for --log-level debug. Other errors are
// returned as they are.
func userError(cmd *cobra.Command, err error) error {
	if core.KindOf(err) == core.KindUnknown {
		return err
	}
	logging.FromContext(cmd.Context()).Debug("command failed", "error", err)
	msg := core.MapError(err)
	return fmt.Errorf("%s [%s] %s", msg.Message, msg.Code, msg.Action)
}
