package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

var reprocessOutDir string

var reprocessCmd = &cobra.Command{
	Use:   "reprocess FILE_ID...",
	Short: "Run extraction again for stored files and refresh the export",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := common.NewValidator()
		for _, a := range args {
			v.Field("file_id", a, common.Required, common.UUID)
		}
		if err := common.ValidateAndReturnError(v); err != nil {
			return err
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		ids := make([]uuid.UUID, 0, len(args))
		for _, a := range args {
			id := uuid.MustParse(a)
			rec, err := env.Processor.ProcessFile(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("reprocess %s: %w", id, err)
			}
			logger.Info("reprocessed", "file_id", id, "filename", rec.Filename, "balance_status", rec.BalanceStatus)
			ids = append(ids, id)
		}

		out, err := env.Export.ExportFiles(cmd.Context(), reprocessOutDir, nil)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Printf("Reprocessed %d file(s); %d row(s) written to %s\n", len(ids), out.Rows, out.CSV)
		return nil
	},
}

var exportOutDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every stored record to CSV and XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		out, err := env.Export.ExportFiles(cmd.Context(), exportOutDir, nil)
		if err != nil {
			return err
		}
		fmt.Printf("%d row(s)\n- CSV: %s\n- XLSX: %s\n", out.Rows, out.CSV, out.XLSX)
		return nil
	},
}

func init() {
	reprocessCmd.Flags().StringVar(&reprocessOutDir, "out-dir", "", "output directory (defaults to export.dir)")
	exportCmd.Flags().StringVar(&exportOutDir, "out-dir", "", "output directory (defaults to export.dir)")
	rootCmd.AddCommand(reprocessCmd, exportCmd)
}
