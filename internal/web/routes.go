package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/emoji-mirror/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	statsHandler := handlers.NewStatsHandler(s.baseline)
	classifyHandler := handlers.NewClassifyHandler(s.config, s.baseline, statsHandler)
	calibrateHandler := handlers.NewCalibrateHandler(s.baseline)
	profilesHandler := handlers.NewProfilesHandler(s.baseline)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Classification
		r.Post("/classify", classifyHandler.Classify)

		// Calibration
		r.Post("/calibrate", calibrateHandler.Calibrate)
		r.Get("/baseline", calibrateHandler.GetBaseline)
		r.Delete("/baseline", calibrateHandler.ResetBaseline)

		// Profiles
		r.Get("/profiles", profilesHandler.List)
		r.Get("/profiles/{uid}", profilesHandler.Get)
		r.Delete("/profiles/{uid}", profilesHandler.Delete)
		r.Post("/profiles/{uid}/activate", profilesHandler.Activate)
		r.Post("/profiles/match", profilesHandler.Match)
		r.Post("/profiles/rebuild-index", profilesHandler.RebuildIndex)

		// Stats
		r.Get("/stats", statsHandler.Get)
	})

	// Placeholder page for anything else.
	s.router.Get("/*", s.serveIndex)
}

// serveIndex serves a minimal landing page pointing at the API.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Emoji Mirror</title>
    <style>
        body { font-family: system-ui, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #1a1a2e; color: #eee; }
        .container { text-align: center; }
        h1 { color: #00d9ff; }
        p { color: #aaa; }
        a { color: #00d9ff; }
        code { background: #2a2a3e; padding: 2px 8px; border-radius: 4px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Emoji Mirror</h1>
        <p>Point your camera frontend at <code>POST /api/v1/classify</code>.</p>
        <p>API is available at <a href="/api/v1/health">/api/v1/health</a></p>
    </div>
</body>
</html>`))
}
