package workbook

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	return f
}

func workbookBytes(t *testing.T, f *excelize.File) []byte {
	t.Helper()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestOpenRejectsGarbage(t *testing.T) {
	if _, err := Open([]byte("this is not a zip container")); err == nil {
		t.Fatal("expected error for non-xlsx data")
	}
}

func TestScanHeader(t *testing.T) {
	h := scanHeader([][]string{{"ID", "Emp Name", "Photo", "Profile Image URL"}})

	if h.EmpNameCol != 2 {
		t.Fatalf("EmpNameCol = %d, expected 2", h.EmpNameCol)
	}
	if h.NameCol != 0 {
		t.Fatalf("NameCol = %d, expected 0", h.NameCol)
	}
	if len(h.ImageCols) != 2 || h.ImageCols[0] != 3 || h.ImageCols[1] != 4 {
		t.Fatalf("ImageCols = %v, expected [3 4]", h.ImageCols)
	}
}

func TestScanHeaderCaseInsensitive(t *testing.T) {
	h := scanHeader([][]string{{" NAME ", "EMP NAME", "PHOTO"}})

	if h.NameCol != 1 {
		t.Fatalf("NameCol = %d, expected 1", h.NameCol)
	}
	if h.EmpNameCol != 2 {
		t.Fatalf("EmpNameCol = %d, expected 2", h.EmpNameCol)
	}
	if len(h.ImageCols) != 1 || h.ImageCols[0] != 3 {
		t.Fatalf("ImageCols = %v, expected [3]", h.ImageCols)
	}
}

func TestScanHeaderExactMatchOnly(t *testing.T) {
	// "Name" columns match by equality, not substring.
	h := scanHeader([][]string{{"Surname", "Nickname"}})

	if h.NameCol != 0 || h.EmpNameCol != 0 {
		t.Fatalf("expected no name columns, got %+v", h)
	}
}

func TestScanHeaderEmpty(t *testing.T) {
	h := scanHeader(nil)
	if h.EmpNameCol != 0 || h.NameCol != 0 || h.ImageCols != nil {
		t.Fatalf("expected zero header, got %+v", h)
	}
}

func TestSheetsRoundtrip(t *testing.T) {
	f := buildWorkbook(t, [][]interface{}{
		{"Name", "Photo"},
		{"Alice", "payload-a"},
		{"Bob", "payload-b"},
	})

	wb, err := Open(workbookBytes(t, f))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer wb.Close()

	sheets, err := wb.Sheets()
	if err != nil {
		t.Fatalf("sheets: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("expected 1 sheet, got %d", len(sheets))
	}

	s := sheets[0]
	if len(s.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(s.Rows))
	}
	if s.Rows[1][0] != "Alice" || s.Rows[2][1] != "payload-b" {
		t.Fatalf("unexpected cell grid: %v", s.Rows)
	}
	if s.Header.NameCol != 1 {
		t.Fatalf("NameCol = %d, expected 1", s.Header.NameCol)
	}
	if len(s.Header.ImageCols) != 1 || s.Header.ImageCols[0] != 2 {
		t.Fatalf("ImageCols = %v, expected [2]", s.Header.ImageCols)
	}
}

func TestPictures(t *testing.T) {
	f := buildWorkbook(t, [][]interface{}{
		{"Name"},
		{"Alice"},
	})
	data := smallPNG(t)
	if err := f.AddPictureFromBytes("Sheet1", "B2", &excelize.Picture{
		Extension: ".png",
		File:      data,
	}); err != nil {
		t.Fatalf("add picture: %v", err)
	}

	wb, err := Open(workbookBytes(t, f))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer wb.Close()

	pics, err := wb.Pictures("Sheet1")
	if err != nil {
		t.Fatalf("pictures: %v", err)
	}
	if len(pics) != 1 {
		t.Fatalf("expected 1 picture, got %d", len(pics))
	}
	if pics[0].Row != 2 {
		t.Fatalf("anchor row = %d, expected 2", pics[0].Row)
	}
	if pics[0].Extension != "png" {
		t.Fatalf("extension = %q, expected png without the dot", pics[0].Extension)
	}
	if !bytes.Equal(pics[0].Data, data) {
		t.Fatal("picture bytes do not match what was embedded")
	}
}

func TestPicturesNone(t *testing.T) {
	f := buildWorkbook(t, [][]interface{}{{"Name"}, {"Alice"}})

	wb, err := Open(workbookBytes(t, f))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer wb.Close()

	pics, err := wb.Pictures("Sheet1")
	if err != nil {
		t.Fatalf("pictures: %v", err)
	}
	if len(pics) != 0 {
		t.Fatalf("expected no pictures, got %d", len(pics))
	}
}
