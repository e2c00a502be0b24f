package write

import (
	"net/http"

	"github.com/alexisnsns/pfalexn/internal/services/site/platform/httpx"
	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc(http.MethodGet+" "+routepath.Write, h.handleComposer)
	mux.HandleFunc(http.MethodPost+" "+routepath.Write, h.handleCreate)
	mux.HandleFunc(http.MethodGet+" "+routepath.WriteSlash+"{$}", h.handleSlash)

	mux.HandleFunc(http.MethodPost+" "+routepath.WriteImage, h.handleUpload)
	mux.HandleFunc(http.MethodGet+" "+routepath.WriteImage, httpx.MethodNotAllowed(http.MethodPost))

	mux.HandleFunc(routepath.WriteSlash+"{rest...}", h.handleNotFound)
}
