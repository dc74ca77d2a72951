// Package naming derives output file names for extracted images and
// guarantees their uniqueness within a single request.
package naming

import (
	"fmt"
	"strings"
)

// RowContext is a view over one spreadsheet row together with the sheet's
// header-derived column indices. Column indices are 1-based; zero means the
// header was not present in row 1.
type RowContext struct {
	EmpNameCol int
	NameCol    int
	Cells      []string
}

func (rc RowContext) cell(col int) string {
	if col <= 0 || col > len(rc.Cells) {
		return ""
	}
	return strings.TrimSpace(rc.Cells[col-1])
}

// BaseName returns the row's "Emp Name" value, falling back to "Name".
// Empty when neither column exists or both values are blank.
func (rc RowContext) BaseName() string {
	if v := rc.cell(rc.EmpNameCol); v != "" {
		return v
	}
	return rc.cell(rc.NameCol)
}

// DefaultEmbeddedName derives the default name for an embedded drawing image
// anchored at rowNum (1-based). Embedded output is always re-encoded JPEG, so
// the extension is fixed to jpg regardless of the source format. The row
// value lookup is skipped for the header row.
func DefaultEmbeddedName(rc RowContext, rowNum int) string {
	if rowNum > 1 {
		if base := rc.BaseName(); base != "" {
			return base + ".jpg"
		}
	}
	if rowNum > 0 {
		return fmt.Sprintf("row_%d.jpg", rowNum)
	}
	return "row_x.jpg"
}

// DefaultCellName derives the default name for a cell-encoded image found at
// (rowNum, colNum), both 1-based. The origin name is "cell_<row>_<col>.<ext>"
// with the extension taken from the sniffed MIME subtype. A rename-mapping
// entry keyed by that exact origin name wins outright — it is evaluated
// before the Emp Name/Name row override, so a mapped image never picks up a
// row-derived name. renames may be nil.
func DefaultCellName(rc RowContext, rowNum, colNum int, mime string, renames map[string]string) string {
	ext := ExtFromMIME(mime)
	origin := fmt.Sprintf("cell_%d_%d.%s", rowNum, colNum, ext)
	if mapped := strings.TrimSpace(renames[origin]); mapped != "" {
		return mapped
	}
	if rowNum > 1 {
		if base := rc.BaseName(); base != "" {
			return base + "." + ext
		}
	}
	return origin
}

// ExtFromMIME returns the subtype of a MIME type ("image/png" → "png").
func ExtFromMIME(mime string) string {
	if i := strings.IndexByte(mime, '/'); i >= 0 {
		return mime[i+1:]
	}
	return mime
}

// ForceExt replaces a name's extension ("Alice.png" → "Alice.jpg" for
// ext ".jpg"). Names without an extension get ext appended.
func ForceExt(name, ext string) string {
	stem, _ := splitExt(name)
	return stem + ext
}

// Registry tracks how many times each name stem has been submitted within a
// request. It is created fresh per request and must only be mutated from the
// sequential dispatch path — uniqueness is a pure function of submission
// order, so the Nth occurrence of a stem (N ≥ 2) is suffixed "_N" and the
// first is returned unchanged.
type Registry struct {
	counts map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{counts: make(map[string]int)}
}

// Resolve returns a name unique among all names resolved so far and records
// the candidate's stem as used.
func (r *Registry) Resolve(candidate string) string {
	stem, ext := splitExt(candidate)
	count := r.counts[stem]
	r.counts[stem] = count + 1
	if count == 0 {
		return candidate
	}
	return fmt.Sprintf("%s_%d%s", stem, count+1, ext)
}

// splitExt splits a name on its last dot. A name with no dot, or with a
// trailing dot, is treated as all stem.
func splitExt(name string) (stem, ext string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return name[:i], name[i:]
	}
	return name, ""
}
