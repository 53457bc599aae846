package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/shelfscan/shelfscan/internal/config"
	"github.com/shelfscan/shelfscan/internal/detector"
	"github.com/shelfscan/shelfscan/internal/ocr"
	"github.com/shelfscan/shelfscan/internal/server"
	"github.com/shelfscan/shelfscan/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("shelfscan %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("shelfscan - shelf image analysis and planogram compliance API")
			fmt.Println()
			fmt.Println("Usage: shelfscan [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  SHELFSCAN_ADDR              Listen address (default :8080)")
			fmt.Println("  SHELFSCAN_DATA_DIR          Planogram/product storage (default data)")
			fmt.Println("  SHELFSCAN_OUTPUT_DIR        Analysis artifacts (default saved_images)")
			fmt.Println("  SHELFSCAN_INFERENCE_URL     Object detection endpoint")
			fmt.Println("  SHELFSCAN_MIN_CONFIDENCE    Detection confidence floor (default 0.1)")
			fmt.Println("  SHELFSCAN_OCR_LANGUAGE      Tesseract language (default eng)")
			fmt.Println("  SHELFSCAN_LOG_LEVEL=debug   Enable debug logging")
			return
		}
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg := config.Load()
	if cfg.Debug() {
		log.Printf("shelfscan v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	planograms, err := store.NewPlanogramStore(filepath.Join(cfg.DataDir, "planograms"))
	if err != nil {
		log.Fatalf("Planogram store error: %v", err)
	}
	products, err := store.NewProductStore(filepath.Join(cfg.DataDir, "products"))
	if err != nil {
		log.Fatalf("Product store error: %v", err)
	}

	det := detector.NewClient(cfg.InferenceURL, cfg.MinConfidence)
	labels := ocr.NewLabelReader(ocr.NewTesseractReader(cfg.OCRLanguage))

	srv, err := server.New(cfg, planograms, products, det, labels)
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Printf("Listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.Routes()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
