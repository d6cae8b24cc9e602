package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

// CSVSeparator is the field separator of delimited exports.
const CSVSeparator = ';'

// Service writes stored records to the configured output directory.
type Service struct {
	recordsRepo repository.InvoiceRecordRepository
	cfg         common.ExportConfig
	logger      *slog.Logger
}

// Paths are the files written by one export.
type Paths struct {
	CSV  string
	XLSX string
	Rows int
}

func NewService(records repository.InvoiceRecordRepository, cfg common.ExportConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseName == "" {
		cfg.BaseName = "extracao_faturas"
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Extracao"
	}
	return &Service{recordsRepo: records, cfg: cfg, logger: logger}
}

// ExportFiles writes CSV and XLSX tables for the given files, or for every
// stored record when fileIDs is empty. dir overrides the configured directory.
func (s *Service) ExportFiles(ctx context.Context, dir string, fileIDs []uuid.UUID) (Paths, error) {
	start := time.Now()
	if dir == "" {
		dir = s.cfg.Dir
	}

	var (
		recs []entity.InvoiceRecord
		err  error
	)
	if len(fileIDs) > 0 {
		recs, err = s.recordsRepo.ListByFileIDs(ctx, fileIDs)
	} else {
		recs, err = s.recordsRepo.List(ctx)
	}
	if err != nil {
		return Paths{}, fmt.Errorf("query records: %w", err)
	}

	rows := make([]Row, 0, len(recs))
	for _, r := range recs {
		row := RowFromRecord(r)
		if err := ValidateRow(row); err != nil {
			s.logger.Warn("export.row.invalid", "file_id", r.FileID, "filename", r.Filename, "error", err)
		}
		rows = append(rows, row)
	}
	table := BuildTable(rows)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}
	out := Paths{
		CSV:  filepath.Join(dir, s.cfg.BaseName+".csv"),
		XLSX: filepath.Join(dir, s.cfg.BaseName+".xlsx"),
		Rows: len(rows),
	}
	if err := writeFile(out.CSV, func(w io.Writer) error { return WriteCSV(w, table) }); err != nil {
		return Paths{}, err
	}
	if err := writeFile(out.XLSX, func(w io.Writer) error { return WriteXLSX(w, table, s.cfg.SheetName) }); err != nil {
		return Paths{}, err
	}

	s.logger.Info("export.ok",
		"rows", out.Rows, "csv", out.CSV, "xlsx", out.XLSX,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes a header row then one line per row, separated by ';'.
// Blank cells are empty fields.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = CSVSeparator
	if err := cw.Write(t.Header()); err != nil {
		return err
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			rec[i] = formatValue(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the table to a single-sheet workbook.
// Numbers are stored as numeric cells; blank cells are left empty.
func WriteXLSX(w io.Writer, t Table, sheet string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range t.Header() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range t.Rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			if d, ok := v.(decimal.Decimal); ok {
				v = d.InexactFloat64()
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if n := len(t.Columns); n > 0 {
		last, _ := excelize.ColumnNumberToName(n)
		_ = f.SetColWidth(sheet, "A", last, 18)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// WriteJSON validates a single row and writes it as an indented JSON object.
func WriteJSON(w io.Writer, row Row) error {
	if err := ValidateRow(row); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(row.JSONValue())
}
