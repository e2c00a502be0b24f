package ideas

import (
	"net/http"

	"github.com/alexisnsns/pfalexn/internal/services/site/platform/httpx"
	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc(http.MethodGet+" "+routepath.Ideas, h.handleList)
	mux.HandleFunc(http.MethodGet+" "+routepath.IdeasSlash+"{$}", h.handleSlash)
	mux.HandleFunc(http.MethodGet+" "+routepath.Idea, h.handlePost)

	mux.HandleFunc(http.MethodGet+" "+routepath.IdeaEdit, h.handleEdit)
	mux.HandleFunc(http.MethodPost+" "+routepath.IdeaEdit, h.handleEditSubmit)

	mux.HandleFunc(http.MethodGet+" "+routepath.IdeaDelete, h.handleDeleteConfirm)
	mux.HandleFunc(http.MethodPost+" "+routepath.IdeaDelete, h.handleDelete)

	mux.HandleFunc(http.MethodPost+" "+routepath.Ideas, httpx.MethodNotAllowed(http.MethodGet))
	mux.HandleFunc(http.MethodPost+" "+routepath.Idea, httpx.MethodNotAllowed(http.MethodGet))
	mux.HandleFunc(routepath.IdeasSlash+"{rest...}", h.handleNotFound)
}
