// Package extract drives the image extraction pipeline: it walks an uploaded
// workbook's sheets, correlates embedded and cell-encoded images to rows,
// names each image, and produces either a zip archive of compressed JPEGs
// (full mode) or an ordered list of preview thumbnails (preview mode).
package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"log"
	"sync"

	"sheetpix/internal/imgproc"
	"sheetpix/internal/naming"
	"sheetpix/internal/sniff"
	"sheetpix/internal/workbook"
)

// ErrNoImages reports that the workbook was readable but contained no
// qualifying images. Transport maps this to a client error, not a fault.
var ErrNoImages = errors.New("no images found in workbook")

// Options select the output mode for one extraction request. Renames maps an
// image's default cell name ("cell_2_3.png") to a caller-chosen replacement;
// it applies only to cell-encoded images and is ignored in preview mode.
type Options struct {
	Preview bool
	Renames map[string]string
}

// PreviewImage is one name/thumbnail pair returned in preview mode.
type PreviewImage struct {
	Name    string `json:"name"`
	Preview string `json:"preview"`
}

// Result is the terminal output of one extraction request. Exactly one of
// Previews or Archive is populated, by mode. Count is the number of images
// discovered and named, including any whose conversion later failed.
type Result struct {
	Previews []PreviewImage
	Archive  []byte
	Count    int
}

// Extractor runs the extraction pipeline. It holds no per-request state, so
// one Extractor serves all requests.
type Extractor struct {
	compressor *imgproc.Compressor
}

// NewExtractor creates an Extractor using the given compressor for both the
// full-mode and preview-mode output paths.
func NewExtractor(c *imgproc.Compressor) *Extractor {
	return &Extractor{compressor: c}
}

// Run extracts every image from the workbook bytes.
//
// Failure to open the container is fatal and returned as-is. A readable
// workbook with zero images returns ErrNoImages. Per-image conversion
// failures are logged and the image is omitted; they never abort siblings.
func (e *Extractor) Run(data []byte, opts Options) (*Result, error) {
	wb, err := workbook.Open(data)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets, err := wb.Sheets()
	if err != nil {
		return nil, err
	}

	renames := opts.Renames
	if opts.Preview {
		renames = nil
	}

	req := &request{
		compressor: e.compressor,
		preview:    opts.Preview,
		registry:   naming.NewRegistry(),
	}
	if !opts.Preview {
		req.archive = zip.NewWriter(&req.buf)
	}

	for _, sheet := range sheets {
		if err := req.embeddedPass(wb, sheet); err != nil {
			return nil, err
		}
		req.cellPass(sheet, renames)
	}

	if req.count == 0 {
		return nil, ErrNoImages
	}

	result := &Result{Previews: req.previews, Count: req.count}
	if !opts.Preview {
		if err := req.archive.Close(); err != nil {
			return nil, fmt.Errorf("finalize archive: %w", err)
		}
		result.Archive = req.buf.Bytes()
	}
	return result, nil
}

// request is the state of one extraction run: the name registry, the output
// archive or preview list, and the running image count. All of it is
// request-scoped and discarded when Run returns.
type request struct {
	compressor *imgproc.Compressor
	preview    bool
	registry   *naming.Registry
	buf        bytes.Buffer
	archive    *zip.Writer
	previews   []PreviewImage
	count      int
}

// embeddedPass processes the sheet's drawing images sequentially in source
// order; name resolution order is what keeps output names reproducible.
func (r *request) embeddedPass(wb *workbook.Workbook, sheet workbook.Sheet) error {
	pics, err := wb.Pictures(sheet.Name)
	if err != nil {
		return err
	}

	for _, pic := range pics {
		name := r.registry.Resolve(naming.DefaultEmbeddedName(rowContext(sheet, pic.Row), pic.Row))
		r.count++

		if r.preview {
			preview, err := r.compressor.Thumbnail(pic.Data)
			if err != nil {
				log.Printf("[Extract] embedded image at %s row %d: preview failed: %v", sheet.Name, pic.Row, err)
				continue
			}
			r.previews = append(r.previews, PreviewImage{Name: name, Preview: preview})
			continue
		}

		compressed, err := r.compressor.Compress(pic.Data)
		if err != nil {
			log.Printf("[Extract] embedded image at %s row %d: compress failed: %v", sheet.Name, pic.Row, err)
			continue
		}
		r.addEntry(name, compressed)
	}
	return nil
}

// cellTask is one dispatched cell-image conversion. The final name is
// resolved before the goroutine starts; only the conversion runs
// concurrently, so completion order can never influence naming.
type cellTask struct {
	name    string
	data    []byte
	out     []byte
	preview string
	err     error
}

// cellPass scans the sheet's photo/image columns for encoded images. The
// conversions are dispatched concurrently and joined before the sheet is
// considered done; results are collected in submission order so the archive
// and preview list stay deterministic too.
func (r *request) cellPass(sheet workbook.Sheet, renames map[string]string) {
	var tasks []*cellTask
	var wg sync.WaitGroup

	for rowIdx, row := range sheet.Rows {
		rowNum := rowIdx + 1
		for _, col := range sheet.Header.ImageCols {
			if col > len(row) {
				continue
			}
			img := sniff.Detect(row[col-1])
			if img == nil {
				continue
			}

			name := r.registry.Resolve(naming.DefaultCellName(rowContext(sheet, rowNum), rowNum, col, img.MIME, renames))
			r.count++

			task := &cellTask{name: name, data: img.Data}
			tasks = append(tasks, task)
			wg.Add(1)
			go func(t *cellTask) {
				defer wg.Done()
				if r.preview {
					t.preview, t.err = r.compressor.Thumbnail(t.data)
				} else {
					t.out, t.err = r.compressor.Compress(t.data)
				}
			}(task)
		}
	}
	wg.Wait()

	for _, t := range tasks {
		if t.err != nil {
			log.Printf("[Extract] cell image %s on %s: %v", t.name, sheet.Name, t.err)
			continue
		}
		if r.preview {
			r.previews = append(r.previews, PreviewImage{Name: t.name, Preview: t.preview})
			continue
		}
		// Archive entries are always JPEG bytes; the entry name follows suit
		// even when the cell's sniffed format named the image .png.
		r.addEntry(naming.ForceExt(t.name, ".jpg"), t.out)
	}
}

// addEntry writes one flat file into the output archive. The buffer-backed
// writer only fails on duplicate or malformed names; the registry rules both
// out, so a failure here is logged and the entry dropped like any other
// per-image error.
func (r *request) addEntry(name string, data []byte) {
	w, err := r.archive.Create(name)
	if err != nil {
		log.Printf("[Extract] archive entry %s: %v", name, err)
		return
	}
	if _, err := w.Write(data); err != nil {
		log.Printf("[Extract] archive entry %s: %v", name, err)
	}
}

// rowContext builds the naming view for a 1-based row number. Rows outside
// the grid (an image anchored below the data) get an empty cell view and
// fall back to positional names.
func rowContext(sheet workbook.Sheet, rowNum int) naming.RowContext {
	rc := naming.RowContext{EmpNameCol: sheet.Header.EmpNameCol, NameCol: sheet.Header.NameCol}
	if rowNum >= 1 && rowNum <= len(sheet.Rows) {
		rc.Cells = sheet.Rows[rowNum-1]
	}
	return rc
}
