package handler

import "net/http"

// HandleAppInfo reports the product name and upload limit the frontend needs
// to render the upload form.
func (app *App) HandleAppInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		cfg := app.configManager.Get()
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"product_name":       cfg.Server.ProductName,
			"max_upload_size_mb": cfg.Server.MaxUploadSizeMB,
		})
	}
}
