package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajesh096/InsightVerify/pkg/logger"
)

// makePDF builds a minimal but structurally valid PDF with the given number
// of empty pages, including a correct xref table.
func makePDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int
	addObj := func(s string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(s)
	}

	buf.WriteString("%PDF-1.4\n")
	addObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, pages)
	for i := 0; i < pages; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	addObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), pages))

	for i := 0; i < pages; i++ {
		addObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n", i+3))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xref)

	return buf.Bytes()
}

func writePDF(t *testing.T, path string, pages int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, makePDF(pages), 0644))
}

// recordingRenderer writes the page number into the output file and records
// which pages it rendered.
type recordingRenderer struct {
	mu       sync.Mutex
	rendered []int
	failPage int
}

func (r *recordingRenderer) RenderPage(ctx context.Context, pdfPath string, page int, dpi int, outPath string) error {
	if r.failPage != 0 && page == r.failPage {
		return fmt.Errorf("render toolchain exploded on page %d", page)
	}
	r.mu.Lock()
	r.rendered = append(r.rendered, page)
	r.mu.Unlock()
	return os.WriteFile(outPath, []byte(fmt.Sprintf("rendered page %d", page)), 0644)
}

func TestRasterizeOrdersPages(t *testing.T) {
	ws := NewWorkspace(t.TempDir(), logger.NewTestLogger())
	run, err := ws.Begin("run-raster")
	require.NoError(t, err)
	defer run.Release()

	pdfPath := run.Path("source.pdf")
	writePDF(t, pdfPath, 3)

	renderer := &recordingRenderer{}
	rast := NewRasterizerWithRenderer(200, 2, renderer, logger.NewTestLogger())

	pages, err := rast.Rasterize(context.Background(), pdfPath, run)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	for i, page := range pages {
		assert.Equal(t, i+1, page.Number)
		assert.Equal(t, run.Path(fmt.Sprintf("page_%d.png", i+1)), page.Path)
		assert.FileExists(t, page.Path)
	}
	assert.ElementsMatch(t, []int{1, 2, 3}, renderer.rendered)
}

func TestRasterizeFailsWhenAnyPageFails(t *testing.T) {
	ws := NewWorkspace(t.TempDir(), logger.NewTestLogger())
	run, err := ws.Begin("run-raster-fail")
	require.NoError(t, err)
	defer run.Release()

	pdfPath := run.Path("source.pdf")
	writePDF(t, pdfPath, 4)

	rast := NewRasterizerWithRenderer(200, 2, &recordingRenderer{failPage: 2}, logger.NewTestLogger())

	_, err = rast.Rasterize(context.Background(), pdfPath, run)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRasterization)
}

func TestRasterizeRejectsCorruptPDF(t *testing.T) {
	ws := NewWorkspace(t.TempDir(), logger.NewTestLogger())
	run, err := ws.Begin("run-raster-corrupt")
	require.NoError(t, err)
	defer run.Release()

	pdfPath, err := run.Save("source.pdf", []byte("this is not a pdf at all"))
	require.NoError(t, err)

	rast := NewRasterizerWithRenderer(200, 2, &recordingRenderer{}, logger.NewTestLogger())

	_, err = rast.Rasterize(context.Background(), pdfPath, run)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRasterization)
}
