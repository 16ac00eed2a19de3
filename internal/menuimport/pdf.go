package menuimport

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const pagesPerChunk = 3

var disableConfigDir sync.Once

// splitPDF cuts data into documents of at most perChunk pages, in page order.
// A document that is already small enough is returned as is.
func splitPDF(data []byte, perChunk int) ([][]byte, error) {
	// pdfcpu varsayılan olarak kullanıcı dizininde config dosyası oluşturur
	disableConfigDir.Do(api.DisableConfigDir)

	pageCount, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("pdf okunamadı: %w", err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("pdf sayfa içermiyor")
	}
	if pageCount <= perChunk {
		return [][]byte{data}, nil
	}

	chunks := make([][]byte, 0, (pageCount+perChunk-1)/perChunk)
	for first := 1; first <= pageCount; first += perChunk {
		last := min(first+perChunk-1, pageCount)
		var buf bytes.Buffer
		sel := []string{fmt.Sprintf("%d-%d", first, last)}
		if err := api.Trim(bytes.NewReader(data), &buf, sel, nil); err != nil {
			return nil, fmt.Errorf("sayfa %d-%d ayrılamadı: %w", first, last, err)
		}
		chunks = append(chunks, buf.Bytes())
	}
	return chunks, nil
}
