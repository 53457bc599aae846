// Package server exposes the shelf analysis pipeline and the product and
// planogram stores over HTTP. Handlers are thin: decoding, defaulting,
// and dispatch into the imaging, detection, compliance, and store
// packages, with JSON in and out.
package server

import (
	"context"
	"image"
	"log"
	"net/http"

	"github.com/shelfscan/shelfscan/internal/compliance"
	"github.com/shelfscan/shelfscan/internal/config"
	"github.com/shelfscan/shelfscan/internal/detector"
	"github.com/shelfscan/shelfscan/internal/imaging"
	"github.com/shelfscan/shelfscan/internal/store"
)

// Detector is the external object-detection collaborator.
type Detector interface {
	Detect(ctx context.Context, imageData []byte) ([]detector.Detection, error)
}

// LabelReader reads the shelf-edge label under a detection box.
type LabelReader interface {
	LabelBelow(img image.Image, box image.Rectangle) string
}

// Server wires the analysis pipeline to its HTTP surface.
type Server struct {
	cfg        *config.Config
	planograms *store.PlanogramStore
	products   *store.ProductStore
	detector   Detector
	labels     LabelReader
	engine     *compliance.Engine
	norm       *compliance.Normalizer
	workspace  *imaging.Workspace
}

// New assembles a Server from its collaborators, creating the artifact
// workspace on disk.
func New(cfg *config.Config, planograms *store.PlanogramStore, products *store.ProductStore, det Detector, labels LabelReader) (*Server, error) {
	ws, err := imaging.NewWorkspace(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	norm := compliance.NewNormalizer()
	return &Server{
		cfg:        cfg,
		planograms: planograms,
		products:   products,
		detector:   det,
		labels:     labels,
		engine:     compliance.NewEngineWithNormalizer(norm),
		norm:       norm,
		workspace:  ws,
	}, nil
}

// Routes returns the service's HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/v1/images/analyze", s.handleAnalyzeImage)
	mux.HandleFunc("POST /api/v1/images/grid", s.handleDetectGrid)
	mux.Handle("GET /images/", http.StripPrefix("/images/",
		http.FileServer(http.Dir(s.workspace.Dir()))))

	mux.HandleFunc("GET /api/v1/planograms", s.handleListPlanograms)
	mux.HandleFunc("POST /api/v1/planograms", s.handleCreatePlanogram)
	mux.HandleFunc("GET /api/v1/planograms/{id}", s.handleGetPlanogram)
	mux.HandleFunc("PUT /api/v1/planograms/{id}", s.handleUpdatePlanogram)
	mux.HandleFunc("DELETE /api/v1/planograms/{id}", s.handleDeletePlanogram)

	mux.HandleFunc("GET /api/v1/products", s.handleListProducts)
	mux.HandleFunc("POST /api/v1/products", s.handleCreateProduct)
	mux.HandleFunc("GET /api/v1/products/{id}", s.handleGetProduct)
	mux.HandleFunc("PUT /api/v1/products/{id}", s.handleUpdateProduct)
	mux.HandleFunc("DELETE /api/v1/products/{id}", s.handleDeleteProduct)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// debugf logs only when debug logging is configured.
func (s *Server) debugf(format string, args ...interface{}) {
	if s.cfg.Debug() {
		log.Printf(format, args...)
	}
}
