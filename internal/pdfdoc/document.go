// Package pdfdoc wraps the PDF operations ballotqa needs: counting pages,
// copying pages into new documents, and stamping overlays onto existing
// pages. All heavy lifting is done by pdfcpu; every call works on its own
// in-memory copy of the document.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrPageOutOfRange is returned when a requested page does not exist.
var ErrPageOutOfRange = errors.New("page out of range")

func init() {
	// Keep pdfcpu from creating a config directory under $HOME.
	api.DisableConfigDir()
}

func newConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount returns the number of pages in pdf.
func PageCount(pdf []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(pdf), newConfig())
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

// ExtractPages copies the given zero-based pages, in order, into a new PDF.
func ExtractPages(pdf []byte, pages ...int) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages selected")
	}
	count, err := PageCount(pdf)
	if err != nil {
		return nil, err
	}
	selected := make([]string, 0, len(pages))
	for _, p := range pages {
		if p < 0 || p >= count {
			return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, p+1, count)
		}
		selected = append(selected, strconv.Itoa(p+1))
	}

	var out bytes.Buffer
	if err := api.Trim(bytes.NewReader(pdf), &out, selected, newConfig()); err != nil {
		return nil, fmt.Errorf("failed to extract pages %v: %w", selected, err)
	}
	return out.Bytes(), nil
}
