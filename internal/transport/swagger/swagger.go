package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Handler serves Swagger UI for the document published at specURL, which
// defaults to /openapi.yml.
func Handler(specURL ...string) http.Handler {
	url := "/openapi.yml"
	if len(specURL) > 0 && specURL[0] != "" {
		url = specURL[0]
	}
	return httpSwagger.Handler(
		httpSwagger.URL(url),
		httpSwagger.DocExpansion("list"),
	)
}
