package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.PDF}

	var (
		pages []string
		err   error
	)
	switch e.cfg.Method {
	case MethodNative:
		pages, err = e.nativePages(path)
		res.Method = ResultPdfNative
	case MethodPdfToText:
		pages, res.Warnings, err = e.pdfToText(ctx, path)
		res.Method = ResultPdfText
	default:
		pages, res.Warnings, err = e.pdfToText(ctx, path)
		res.Method = ResultPdfText
		if err != nil {
			e.logger.Warn("pdftotext failed; reading text layer natively", "path", path, "error", err)
			res.Warnings = append(res.Warnings, err.Error())
			pages, err = e.nativePages(path)
			res.Method = ResultPdfNative
		}
	}
	if err != nil {
		return res, err
	}

	if hasText(pages) {
		res.PageTexts = pages
		return res, nil
	}
	if !e.cfg.OCRFallback {
		return res, fmt.Errorf("%s: %w", path, common.ErrNoText)
	}

	e.logger.Info("pdf has no text layer; running ocr", "path", path, "pages", len(pages))
	pages, warns, err := e.pdfToOCR(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	res.Method = ResultPdfOCR
	if err != nil {
		return res, err
	}
	if !hasText(pages) {
		return res, fmt.Errorf("%s: %w", path, common.ErrNoText)
	}
	res.PageTexts = pages
	return res, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (pages []string, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, e.logger, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, []string{string(errb)}, fmt.Errorf("pdftotext: %w", err)
	}
	// A form-feed \f terminates every page
	pages = strings.Split(string(out), "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return e.limitPages(pages), nil, nil
}

// nativePages reads the text layer in-process, one line per text row.
func (e *Extractor) nativePages(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	if e.cfg.MaxPages > 0 && n > e.cfg.MaxPages {
		n = e.cfg.MaxPages
	}
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		var b strings.Builder
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, w := range row.Content {
				words = append(words, w.S)
			}
			b.WriteString(strings.Join(words, " "))
			b.WriteByte('\n')
		}
		pages = append(pages, b.String())
	}
	return pages, nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) (pages []string, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "fx-pp-*")
	if err != nil {
		return nil, nil, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, e.logger, append(args, path, prefix)...)
	if err != nil {
		return nil, []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sortPageImages(matches)
	matches = e.limitPages(matches)
	if len(matches) == 0 {
		return nil, []string{"pdftoppm produced no images"}, errors.New("no pages rendered")
	}

	for _, img := range matches {
		txt, w, err := e.tesseractOCR(ctx, img)
		warnings = append(warnings, w...)
		if err != nil {
			warnings = append(warnings, err.Error())
			pages = append(pages, "")
			continue
		}
		pages = append(pages, txt)
	}
	return pages, warnings, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.logger, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return CleanOCRText(string(out)), nil, nil
}

func (e *Extractor) limitPages(pages []string) []string {
	if e.cfg.MaxPages > 0 && len(pages) > e.cfg.MaxPages {
		return pages[:e.cfg.MaxPages]
	}
	return pages
}

// sortPageImages orders pdftoppm output numerically; its zero padding depends on the page count.
func sortPageImages(paths []string) {
	num := func(p string) int {
		base := strings.TrimSuffix(filepath.Base(p), ".png")
		n, _ := strconv.Atoi(base[strings.LastIndexByte(base, '-')+1:])
		return n
	}
	sort.SliceStable(paths, func(i, j int) bool { return num(paths[i]) < num(paths[j]) })
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
