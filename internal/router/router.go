package router

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clsllc/landscaping-site/backend/internal/diagnostics"
	"github.com/clsllc/landscaping-site/backend/internal/gateway"
	"github.com/clsllc/landscaping-site/backend/internal/handlers"
	"github.com/clsllc/landscaping-site/backend/internal/middleware"
	"github.com/clsllc/landscaping-site/backend/internal/store"
)

// SetupMiddleware configures global Echo middleware.
func SetupMiddleware(e *echo.Echo, metricsEnabled bool) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	if metricsEnabled {
		e.Use(middleware.PrometheusMetrics)
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// The gateway may be nil; the stores then serve local state.
func SetupRoutes(
	e *echo.Echo,
	gw *gateway.Gateway,
	content *store.ContentStore,
	gallery *store.GalleryStore,
	community *store.CommunityStore,
	diag *diagnostics.Service,
) {
	healthHandler := handlers.NewHealthHandler(gw)
	e.GET("/health", healthHandler.Check)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Creative Landscaping Solutions API"})
	})

	api := e.Group("/api/v1")

	handlers.NewContentHandler(content).RegisterContentRoutes(api)
	handlers.NewGalleryHandler(gallery).RegisterGalleryRoutes(api)
	handlers.NewCommunityHandler(community).RegisterCommunityRoutes(api)
	handlers.NewDiagnosticsHandler(diag).RegisterDiagnosticsRoutes(api)

	log.Println("Content, gallery, community and diagnostics routes configured.")
}
