package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/core"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Extract one invoice and print its row as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// no database: file, job and record repositories are not needed
		proc := core.NewProcessor(logger, newTextExtractor(), nil, nil, nil)
		out, err := proc.ExtractPath(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		row := export.NewRow(filepath.Base(args[0]), out.Record, out.Balance)
		return export.WriteJSON(os.Stdout, row)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
