// Package swaggerkit mounts the swagger UI and the admin OpenAPI document
package swaggerkit

import (
	"net/http"

	phttp "meitanbot/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Mount serves the Swagger UI and the OpenAPI document when enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON())
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("meitanbot"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
