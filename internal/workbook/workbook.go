// Package workbook reads xlsx containers through excelize: sheet cell grids,
// per-sheet header mappings, and embedded drawing images with their anchor
// positions. It narrows excelize's dynamic cell values to plain strings so
// the extraction core never sees untyped data.
package workbook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Header records the 1-based column indices resolved from a sheet's header
// row (row 1). Zero means the header was not found. ImageCols lists every
// column whose header contains "photo" or "image", case-insensitive.
type Header struct {
	EmpNameCol int
	NameCol    int
	ImageCols  []int
}

// Sheet is one worksheet's materialized cell grid plus its header mapping.
// The header scan happens exactly once per sheet, here.
type Sheet struct {
	Name   string
	Rows   [][]string
	Header Header
}

// Picture is an embedded drawing image with its top-left anchor row
// (1-based; zero when the anchor could not be resolved).
type Picture struct {
	Data      []byte
	Extension string
	Row       int
}

// Workbook wraps an open xlsx file.
type Workbook struct {
	file *excelize.File
}

// Open parses an xlsx container from bytes. Corrupt or non-xlsx data fails
// here, which the caller treats as fatal to the whole request.
func Open(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Workbook{file: f}, nil
}

// Close releases the underlying file.
func (wb *Workbook) Close() error {
	return wb.file.Close()
}

// Sheets returns every worksheet in workbook order with its cell grid and
// header mapping.
func (wb *Workbook) Sheets() ([]Sheet, error) {
	var sheets []Sheet
	for _, name := range wb.file.GetSheetList() {
		rows, err := wb.file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows, Header: scanHeader(rows)})
	}
	return sheets, nil
}

// Pictures returns the sheet's embedded drawing images in source order, each
// carrying the 1-based row of its top-left anchor cell.
func (wb *Workbook) Pictures(sheet string) ([]Picture, error) {
	cells, err := wb.file.GetPictureCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("list pictures on %q: %w", sheet, err)
	}

	var pics []Picture
	for _, cell := range cells {
		imgs, err := wb.file.GetPictures(sheet, cell)
		if err != nil {
			return nil, fmt.Errorf("read picture at %s!%s: %w", sheet, cell, err)
		}
		row := 0
		if _, r, err := excelize.CellNameToCoordinates(cell); err == nil {
			row = r
		}
		for _, img := range imgs {
			pics = append(pics, Picture{
				Data:      img.File,
				Extension: strings.TrimPrefix(img.Extension, "."),
				Row:       row,
			})
		}
	}
	return pics, nil
}

// scanHeader resolves the name and image columns from row 1. "emp name" and
// "name" match by case-insensitive exact equality; image columns by
// case-insensitive "photo"/"image" substring. The first match wins for the
// name columns.
func scanHeader(rows [][]string) Header {
	var h Header
	if len(rows) == 0 {
		return h
	}
	for i, cell := range rows[0] {
		header := strings.ToLower(strings.TrimSpace(cell))
		col := i + 1
		switch header {
		case "emp name":
			if h.EmpNameCol == 0 {
				h.EmpNameCol = col
			}
		case "name":
			if h.NameCol == 0 {
				h.NameCol = col
			}
		}
		if strings.Contains(header, "photo") || strings.Contains(header, "image") {
			h.ImageCols = append(h.ImageCols, col)
		}
	}
	return h
}
