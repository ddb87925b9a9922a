// Package pdf wraps PDF page access: page counting, per-page plain text,
// and page rasterization for the vision extraction path.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DefaultDPI is the rasterization resolution for drawing-cohort pages.
const DefaultDPI = 200

// ErrInvalidDocument marks a document-level failure (corrupt or unreadable
// container). Page-level failures return ordinary errors instead.
var ErrInvalidDocument = errors.New("invalid or corrupt PDF")

// Document is an opened PDF with a known page count.
type Document struct {
	path      string
	pageCount int
}

// Open validates the PDF container and reads its page count.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrInvalidDocument)
	}

	return &Document{path: path, pageCount: pageCount}, nil
}

// Path returns the underlying file path.
func (d *Document) Path() string { return d.path }

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return d.pageCount }

// PageText extracts plain text from a single 1-indexed page using pdftotext
// (poppler-utils).
func (d *Document) PageText(ctx context.Context, pageNum int) (string, error) {
	if pageNum < 1 || pageNum > d.pageCount {
		return "", fmt.Errorf("page %d out of range (1-%d)", pageNum, d.pageCount)
	}

	pageStr := fmt.Sprintf("%d", pageNum)
	cmd := exec.CommandContext(ctx, "pdftotext",
		"-f", pageStr,
		"-l", pageStr,
		"-enc", "UTF-8",
		d.path,
		"-", // write to stdout
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed for page %d: %w (output: %s)", pageNum, err, stderr.String())
	}

	return stdout.String(), nil
}

// RenderPage rasterizes a single 1-indexed page to PNG at the given DPI
// using pdftoppm (poppler-utils).
func (d *Document) RenderPage(ctx context.Context, pageNum, dpi int) ([]byte, error) {
	if pageNum < 1 || pageNum > d.pageCount {
		return nil, fmt.Errorf("page %d out of range (1-%d)", pageNum, d.pageCount)
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	tmpDir, err := os.MkdirTemp("", "specsift-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "page")
	pageStr := fmt.Sprintf("%d", pageNum)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", fmt.Sprintf("%d", dpi),
		"-singlefile",
		d.path,
		outputPrefix,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed for page %d: %w (output: %s)", pageNum, err, string(output))
	}

	// pdftoppm with -singlefile creates: <prefix>.png
	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}

	return data, nil
}
