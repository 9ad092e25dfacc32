// Package swagger serves the API reference: the raw OpenAPI document and a
// ReDoc page rendering it.
package swagger

import (
	"context"
	"net/http"
	"strconv"
)

// RedocURL is the ReDoc bundle the docs page loads.
const RedocURL = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"

// Routes.
const (
	DocsPath     = "/api-docs"
	DocumentPath = "/openapi.yaml"
)

// Register attaches the docs page and the OpenAPI document to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("swagger: nil mux")
	}
	mux.HandleFunc("GET "+DocsPath, serveDocs)
	mux.HandleFunc("GET "+DocumentPath, serveDocument)
}

func serveDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(docsPage))
}

func serveDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(Document)))
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(Document)
}

var docsPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Intervue API</title>
    <style>body{margin:0}</style>
  </head>
  <body>
    <div id="docs"></div>
    <script src="` + RedocURL + `"></script>
    <script>Redoc.init('` + DocumentPath + `', {hideDownloadButton: false}, document.getElementById('docs'));</script>
  </body>
</html>`
