package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"sheetpix/internal/config"
	"sheetpix/internal/extract"
	"sheetpix/internal/handler"
	"sheetpix/internal/imgproc"
	"sheetpix/internal/middleware"
)

func main() {
	// Ensure data directory exists
	if err := os.MkdirAll("./data", 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// 1. Initialize ConfigManager and load config
	configPath := "./data/config.json"
	cm, err := config.NewConfigManager(configPath)
	if err != nil {
		log.Fatalf("Failed to create config manager: %v", err)
	}
	if err := cm.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := cm.Get()

	// 2. Create service instances
	compressor := &imgproc.Compressor{
		SizeLimit:    cfg.Extract.SizeLimitKB * 1024,
		StartQuality: cfg.Extract.StartQuality,
		QualityStep:  cfg.Extract.QualityStep,
		MinQuality:   cfg.Extract.MinQuality,
		ThumbSize:    cfg.Extract.ThumbnailPx,
		ThumbQuality: cfg.Extract.ThumbnailQuality,
	}
	ex := extract.NewExtractor(compressor)

	// 3. Create App
	app := handler.NewApp(cm, ex)

	// 4. Register HTTP API handlers behind the middleware chain
	rl := middleware.NewRateLimiter(cfg.Server.RateLimit, time.Minute)
	defer rl.Stop()
	base := middleware.Chain(
		middleware.RequestID(),
		middleware.SecurityHeaders(),
		middleware.CORS(),
		rl.Limit(),
	)
	http.HandleFunc("/api/process", base(app.HandleProcess()))
	http.HandleFunc("/api/app-info", base(app.HandleAppInfo()))

	// 5. Serve frontend with SPA fallback (non-API routes serve index.html)
	http.Handle("/", spaHandler("frontend/dist"))

	// 6. Start HTTP server
	addr := cfg.Server.Addr
	fmt.Printf("%s starting on http://%s\n", cfg.Server.ProductName, addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

// spaHandler serves static files from dir, falling back to index.html for SPA routes.
func spaHandler(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := filepath.Join(dir, filepath.Clean(r.URL.Path))
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback: serve index.html for SPA routing
		http.ServeFile(w, r, indexPath)
	})
}
