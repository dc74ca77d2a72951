package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"sheetpix/internal/extract"
)

// HandleProcess accepts a multipart upload of an .xlsx workbook and returns
// either a zip archive of the extracted images or, with ?preview=1, a JSON
// list of named thumbnails.
func (app *App) HandleProcess() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		cfg := app.configManager.Get()
		maxBytes := cfg.Server.MaxUploadSizeMB << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		if err := r.ParseMultipartForm(maxBytes); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "no file uploaded")
			return
		}
		defer file.Close()

		if !IsWorkbookFilename(header.Filename) {
			WriteError(w, http.StatusBadRequest, "only .xlsx files are supported")
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "failed to read upload")
			return
		}

		opts := extract.Options{Preview: r.URL.Query().Get("preview") == "1"}
		if !opts.Preview {
			opts.Renames = parseRenames(r.FormValue("nameMapping"))
		}

		result, err := app.extractor.Run(data, opts)
		if err != nil {
			if errors.Is(err, extract.ErrNoImages) {
				WriteError(w, http.StatusUnprocessableEntity, "no images found in the uploaded file")
				return
			}
			log.Printf("[Process] %s: %v", header.Filename, err)
			WriteError(w, http.StatusInternalServerError, "processing failed")
			return
		}

		if opts.Preview {
			previews := result.Previews
			if previews == nil {
				previews = []extract.PreviewImage{}
			}
			WriteJSON(w, http.StatusOK, map[string]interface{}{"images": previews})
			return
		}

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename=images.zip`)
		if _, err := w.Write(result.Archive); err != nil {
			log.Printf("[Process] write archive: %v", err)
		}
	}
}

// parseRenames decodes the optional nameMapping form value. A malformed
// mapping is ignored rather than failing the upload.
func parseRenames(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		log.Printf("[Process] ignoring malformed nameMapping: %v", err)
		return nil
	}
	return m
}
