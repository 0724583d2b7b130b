package routes

import (
	"encoding/json"
	"net/http"

	"nutrition-assistant/internal/infra/handlers"

	"github.com/gorilla/mux"
)

type Routes struct {
	Mux         *mux.Router
	HttpHandler *handlers.HttpHandlers
	PdfHandler  *handlers.PdfHandlers
}

func NewRoutes(mux *mux.Router, httpHandler *handlers.HttpHandlers, pdfHandler *handlers.PdfHandlers) *Routes {
	return &Routes{Mux: mux, HttpHandler: httpHandler, PdfHandler: pdfHandler}
}

func (r *Routes) Init() {
	r.Mux.HandleFunc("/message", r.HttpHandler.ProcessMessage).Methods(http.MethodPost)

	r.Mux.HandleFunc("/session/{sessionId}", r.HttpHandler.GetSession).Methods(http.MethodGet)
	r.Mux.HandleFunc("/session/{sessionId}", r.HttpHandler.DeleteSession).Methods(http.MethodDelete)
	r.Mux.HandleFunc("/sessions", r.HttpHandler.ListSessions).Methods(http.MethodGet)

	r.Mux.HandleFunc("/export-pdf", r.PdfHandler.ExportPdf).Methods(http.MethodPost)
	r.Mux.HandleFunc("/preview-pdf", r.PdfHandler.PreviewPdf).Methods(http.MethodPost)

	r.Mux.HandleFunc("/healthCheck", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods(http.MethodGet)
}
