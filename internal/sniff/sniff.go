// Package sniff classifies spreadsheet cell values that carry images as
// encoded text. A cell may hold a data-URI ("data:image/png;base64,...") or a
// bare base64 string; anything else is simply not an image.
package sniff

import (
	"bytes"
	"encoding/base64"
	"regexp"
)

// CellImage holds the decoded bytes and MIME type of a cell-encoded image.
type CellImage struct {
	Data []byte
	MIME string
}

// dataURIRe matches base64 data-URIs for any image subtype.
var dataURIRe = regexp.MustCompile(`^data:(image/[a-zA-Z0-9.+-]+);base64,(.+)$`)

var (
	jpegMagic = []byte{0xFF, 0xD8}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

// Detect reports whether value is a usable encoded image.
//
// A data-URI yields the subtype it declares. A bare base64 string is decoded
// and identified by its leading bytes: the JPEG start-of-image marker or the
// PNG signature. Everything else — malformed base64, unrecognized formats,
// empty values — returns nil; that is the expected outcome for ordinary cell
// text, not an error.
func Detect(value string) *CellImage {
	if value == "" {
		return nil
	}

	if m := dataURIRe.FindStringSubmatch(value); m != nil {
		data, err := base64.StdEncoding.DecodeString(m[2])
		if err != nil {
			return nil
		}
		return &CellImage{Data: data, MIME: m[1]}
	}

	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	if bytes.HasPrefix(data, jpegMagic) {
		return &CellImage{Data: data, MIME: "image/jpeg"}
	}
	if bytes.HasPrefix(data, pngMagic) {
		return &CellImage{Data: data, MIME: "image/png"}
	}
	return nil
}
