package web

import (
	"github.com/faceforge/faceforge/internal/web/handlers"
	"github.com/faceforge/faceforge/internal/web/middleware"
	"github.com/go-chi/chi/v5"
)

func (s *Server) setupRoutes() {
	// Create handlers
	imagesHandler := handlers.NewImagesHandler(s.service)
	facesHandler := handlers.NewFacesHandler(s.service)
	clustersHandler := handlers.NewClustersHandler(s.service)
	reviewsHandler := handlers.NewReviewsHandler(s.service)
	tenantsHandler := handlers.NewTenantsHandler(s.service)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireToken(&s.config.Auth))

		// Images
		r.Post("/images", imagesHandler.Ingest)
		r.Get("/images/{imageID}", imagesHandler.Get)
		r.Delete("/images/{imageID}", imagesHandler.Delete)
		r.Get("/images/{imageID}/faces", imagesHandler.ListFaces)

		// Faces
		r.Get("/faces/{faceID}", facesHandler.Get)
		r.Delete("/faces/{faceID}", facesHandler.Delete)
		r.Post("/faces/{faceID}/reassign", facesHandler.Reassign)

		// Clusters
		r.Get("/clusters/{clusterID}", clustersHandler.GetStats)
		r.Delete("/clusters/{clusterID}", clustersHandler.Delete)

		// Review queue
		r.Get("/reviews", reviewsHandler.List)
		r.Get("/reviews/{reviewID}", reviewsHandler.Get)
		r.Delete("/reviews/{reviewID}", reviewsHandler.Delete)

		// Tenants
		r.Delete("/tenants/{tenantID}", tenantsHandler.Delete)
	})
}
