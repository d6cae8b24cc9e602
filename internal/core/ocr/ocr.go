package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// Text extraction methods for PDFs.
const (
	MethodAuto      = "auto"
	MethodPdfToText = "pdftotext"
	MethodNative    = "native"
)

// Values reported in ExtractionResult.Method.
const (
	ResultPdfText   = "pdf-text"
	ResultPdfNative = "pdf-native"
	ResultPdfOCR    = "pdf-ocr"
	ResultPlainText = "plain-text"
)

type Config struct {
	Method    string // auto | pdftotext | native; empty means auto
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	OCRFallback   bool   // rasterize and OCR PDFs without a text layer
	TesseractLang string // default "por"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit
	TessdataDir   string
}

// ConfigFromText maps the application text settings onto an extractor config.
func ConfigFromText(tc common.TextConfig) Config {
	return Config{
		Method:        tc.Method,
		Pdftotext:     tc.PdfToText,
		Pdftoppm:      tc.PdfToPpm,
		Tesseract:     tc.Tesseract,
		OCRFallback:   tc.OCRFallback,
		TesseractLang: tc.OCRLanguage,
		DPI:           tc.DPI,
		MaxPages:      tc.MaxPages,
		TessdataDir:   tc.TessdataDir,
	}
}

type ExtractionResult struct {
	Text       string
	PageTexts  []string
	Pages      int
	SourceType string // constants.PDF | constants.TEXT
	Method     string
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Method == "" {
		cfg.Method = MethodAuto
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "por"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "method", e.cfg.Method, "ext", ext)

	var (
		res ExtractionResult
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.TEXT:
		res, err = readPlainText(path)
	default:
		e.logger.Error("unsupported extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	res.Pages = len(res.PageTexts)
	res.Text = JoinPages(res.PageTexts)
	return res, nil
}

// JoinPages concatenates page texts the way the field extractor expects:
// every page is preceded by a newline.
func JoinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteByte('\n')
		b.WriteString(p)
	}
	return b.String()
}

func readPlainText(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{SourceType: constants.TEXT}, fmt.Errorf("read text: %w", err)
	}
	return ExtractionResult{
		PageTexts:  []string{normalizeNewlines(string(b))},
		SourceType: constants.TEXT,
		Method:     ResultPlainText,
	}, nil
}
