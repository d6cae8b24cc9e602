package ocr

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

type call struct {
	name string
	args []string
}

// fakeRunner answers commands by binary name and records every call.
type fakeRunner struct {
	calls   []call
	outputs map[string]string
	fail    map[string]error
	// onRun lets a test create files a real binary would write.
	onRun func(name string, args []string)
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if f.onRun != nil {
		f.onRun(name, args)
	}
	if err := f.fail[name]; err != nil {
		return nil, []byte(name + " failed"), err
	}
	return []byte(f.outputs[name]), nil, nil
}

func newTestExtractor(cfg Config, r Runner) *Extractor {
	e := NewExtractor(cfg, nil)
	e.runner = r
	return e
}

func TestNewExtractor_Defaults(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	assert.Equal(t, MethodAuto, e.cfg.Method)
	assert.Equal(t, "pdftotext", e.cfg.Pdftotext)
	assert.Equal(t, "pdftoppm", e.cfg.Pdftoppm)
	assert.Equal(t, "tesseract", e.cfg.Tesseract)
	assert.Equal(t, "por", e.cfg.TesseractLang)
	assert.Equal(t, 300, e.cfg.DPI)
}

func TestJoinPages(t *testing.T) {
	assert.Equal(t, "\npage one\npage two", JoinPages([]string{"page one", "page two"}))
	assert.Equal(t, "", JoinPages(nil))
}

func TestExtract_PdfToTextSplitsPages(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"pdftotext": "first page\fsecond page\f"}}
	e := newTestExtractor(Config{}, r)

	res, err := e.Extract(context.Background(), "/in/fatura.PDF")
	require.NoError(t, err)
	assert.Equal(t, []string{"first page", "second page"}, res.PageTexts)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "\nfirst page\nsecond page", res.Text)
	assert.Equal(t, ResultPdfText, res.Method)
	assert.Equal(t, constants.PDF, res.SourceType)

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix", "/in/fatura.PDF", "-"}, r.calls[0].args)
}

func TestExtract_MaxPages(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"pdftotext": "a\fb\fc\f"}}
	e := newTestExtractor(Config{MaxPages: 2}, r)

	res, err := e.Extract(context.Background(), "/in/x.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.PageTexts)
}

func TestExtract_PdfToTextFailsWithoutFallbackMethod(t *testing.T) {
	r := &fakeRunner{fail: map[string]error{"pdftotext": errors.New("exit status 1")}}
	e := newTestExtractor(Config{Method: MethodPdfToText}, r)

	_, err := e.Extract(context.Background(), "/in/x.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext")
}

func TestExtract_AutoFallsBackToNativeReader(t *testing.T) {
	r := &fakeRunner{fail: map[string]error{"pdftotext": errors.New("not found")}}
	e := newTestExtractor(Config{}, r)

	// not a real PDF, so the native reader fails too and reports its own error
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	res, err := e.Extract(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, ResultPdfNative, res.Method)
	assert.NotEmpty(t, res.Warnings)
}

func TestExtract_EmptyTextLayerRunsOCR(t *testing.T) {
	r := &fakeRunner{
		outputs: map[string]string{
			"pdftotext": "  \f\f",
			"tesseract": "TOTAL A PAGAR R$ 10,00\n-----\n",
		},
	}
	r.onRun = func(name string, args []string) {
		if name != "pdftoppm" {
			return
		}
		prefix := args[len(args)-1]
		for _, n := range []string{"-10.png", "-2.png", "-1.png"} {
			require.NoError(t, os.WriteFile(prefix+n, nil, 0o644))
		}
	}
	e := newTestExtractor(Config{OCRFallback: true, MaxPages: 2}, r)

	res, err := e.Extract(context.Background(), "/in/scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, ResultPdfOCR, res.Method)
	assert.Equal(t, []string{"TOTAL A PAGAR R$ 10,00", "TOTAL A PAGAR R$ 10,00"}, res.PageTexts)

	var tesseractImages []string
	for _, c := range r.calls {
		if c.name == "tesseract" {
			tesseractImages = append(tesseractImages, filepath.Base(c.args[0]))
			assert.Equal(t, []string{"stdout", "-l", "por"}, c.args[1:])
		}
	}
	assert.Equal(t, []string{"page-1.png", "page-2.png"}, tesseractImages)
}

func TestExtract_EmptyTextLayerWithoutOCR(t *testing.T) {
	r := &fakeRunner{outputs: map[string]string{"pdftotext": "\f"}}
	e := newTestExtractor(Config{}, r)

	_, err := e.Extract(context.Background(), "/in/scan.pdf")
	require.ErrorIs(t, err, common.ErrNoText)
}

func TestExtract_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fatura.txt")
	require.NoError(t, os.WriteFile(path, []byte("LINHA 1\r\nLINHA 2"), 0o644))

	res, err := NewExtractor(Config{}, nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "\nLINHA 1\nLINHA 2", res.Text)
	assert.Equal(t, ResultPlainText, res.Method)
	assert.Equal(t, 1, res.Pages)
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := NewExtractor(Config{}, nil).Extract(context.Background(), "/in/photo.heic")
	require.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestCleanOCRText(t *testing.T) {
	in := "LEITURA 05/11/2025  \r\n______\r\n\n\n\nSALDO 100\t"
	assert.Equal(t, "LEITURA 05/11/2025\n\nSALDO 100", CleanOCRText(in))
	assert.False(t, strings.Contains(CleanOCRText("a\n====\nb"), "="))
}
