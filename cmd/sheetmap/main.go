// Command sheetmap imports and exports back-office spreadsheets from the
// command line, using the same forms as the HTTP server.
package main

import (
	"fmt"
	"os"

	_ "github.com/JonMunkholm/sheetmap/internal/core/forms" // Register all forms
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment may already be configured.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
