package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/joseph-ayodele/skogsprospekt/internal/analysis"
	"github.com/joseph-ayodele/skogsprospekt/internal/export"
	processor "github.com/joseph-ayodele/skogsprospekt/internal/pipeline"
	"github.com/joseph-ayodele/skogsprospekt/internal/repository"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Logger         *slog.Logger
	Processor      *processor.Processor
	Blobs          repository.BlobRepository
	Export         *export.Service
	Registry       *analysis.Registry
	AccessToken    string
	UploadMaxBytes int64
}

// Server holds the handlers for the prospectus API.
type Server struct {
	log       *slog.Logger
	proc      *processor.Processor
	blobs     repository.BlobRepository
	export    *export.Service
	registry  *analysis.Registry
	token     string
	maxUpload int64
}

func New(d Deps) *Server {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	reg := d.Registry
	if reg == nil && d.Processor != nil {
		reg = d.Processor.Registry
	}
	if reg == nil {
		reg = analysis.DefaultRegistry()
	}
	exp := d.Export
	if exp == nil {
		exp = export.NewService(log)
	}
	maxUpload := d.UploadMaxBytes
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}
	return &Server{
		log:       log,
		proc:      d.Processor,
		blobs:     d.Blobs,
		export:    exp,
		registry:  reg,
		token:     d.AccessToken,
		maxUpload: maxUpload,
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", headerAccessToken},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(accessToken(s.token))
		r.Post("/upload", s.handleUpload)
		r.Post("/process", s.handleProcess)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analyzers", s.handleAnalyzers)
		r.Get("/get/*", s.handleGet)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not found")
	})
	return r
}
