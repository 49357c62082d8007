package pipeline

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/rajesh096/InsightVerify/internal/models"
	"github.com/rajesh096/InsightVerify/pkg/logger"
)

// PageRenderer renders a single PDF page to a PNG file at the given DPI.
type PageRenderer interface {
	RenderPage(ctx context.Context, pdfPath string, page int, dpi int, outPath string) error
}

// popplerRenderer shells out to poppler's pdftoppm.
type popplerRenderer struct{}

func (popplerRenderer) RenderPage(ctx context.Context, pdfPath string, page int, dpi int, outPath string) error {
	// pdftoppm appends the extension itself; -singlefile drops the page suffix.
	prefix := outPath[:len(outPath)-len(".png")]
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-singlefile",
		pdfPath,
		prefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pdftoppm page %d: %w (%s)", page, err, out)
	}
	return nil
}

// Rasterizer converts a PDF into ordered page images at a fixed resolution.
type Rasterizer struct {
	dpi        int
	maxWorkers int
	renderer   PageRenderer
	logger     logger.Logger
}

func NewRasterizer(dpi, maxWorkers int, log logger.Logger) *Rasterizer {
	return &Rasterizer{
		dpi:        dpi,
		maxWorkers: maxWorkers,
		renderer:   popplerRenderer{},
		logger:     log,
	}
}

// NewRasterizerWithRenderer injects a renderer. Used by tests and by callers
// that bring their own rendering toolchain.
func NewRasterizerWithRenderer(dpi, maxWorkers int, renderer PageRenderer, log logger.Logger) *Rasterizer {
	return &Rasterizer{
		dpi:        dpi,
		maxWorkers: maxWorkers,
		renderer:   renderer,
		logger:     log,
	}
}

// Rasterize renders every page of the PDF into the run directory and returns
// the pages numbered 1..N in page order. Page work is dispatched to a bounded
// pool; completion order is not page order, so results are keyed back into
// their slot by page number. All-or-nothing: any page failure fails the whole
// call.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath string, run *RunDir) ([]models.PageImage, error) {
	numPages, err := r.pageCount(pdfPath)
	if err != nil {
		return nil, err
	}

	pages := make([]models.PageImage, numPages)

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, r.maxWorkers)

	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			outPath := run.Path(fmt.Sprintf("page_%d.png", pageNum))
			if err := r.renderer.RenderPage(ctx, pdfPath, pageNum, r.dpi, outPath); err != nil {
				return fmt.Errorf("%w: %v", ErrRasterization, err)
			}

			pages[pageNum-1] = models.PageImage{Number: pageNum, Path: outPath}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Info("Rasterized PDF",
		logger.String("pdf", pdfPath),
		logger.Int("pages", numPages),
		logger.Int("dpi", r.dpi),
	)

	return pages, nil
}

// pageCount validates the PDF and returns its page count.
func (r *Rasterizer) pageCount(pdfPath string) (int, error) {
	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRasterization, err)
	}
	defer f.Close()

	n := reader.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("%w: document has no pages", ErrRasterization)
	}
	return n, nil
}
