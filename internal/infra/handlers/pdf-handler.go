package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"nutrition-assistant/internal/domain/dto"
	Iservices "nutrition-assistant/internal/domain/interfaces/services"
	"nutrition-assistant/internal/infra/logger"
	"nutrition-assistant/internal/infra/services"

	"github.com/google/uuid"
)

type PdfHandlers struct {
	Logger     *logger.Logger
	PdfService Iservices.IDocumentRenderer
}

func NewPdfHandlers(logger *logger.Logger, pdfService Iservices.IDocumentRenderer) *PdfHandlers {
	return &PdfHandlers{Logger: logger, PdfService: pdfService}
}

// ExportPdf renders the plan document as a download.
func (th *PdfHandlers) ExportPdf(w http.ResponseWriter, r *http.Request) {
	th.renderPdf(w, r, fmt.Sprintf("attachment; filename=%q", "plano-alimentar-"+uuid.NewString()+".pdf"))
}

// PreviewPdf renders the same document inline for the browser.
func (th *PdfHandlers) PreviewPdf(w http.ResponseWriter, r *http.Request) {
	th.renderPdf(w, r, "inline")
}

func (th *PdfHandlers) renderPdf(w http.ResponseWriter, r *http.Request, disposition string) {
	var body dto.PdfExportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		th.Logger.Error(fmt.Sprintf("Invalid JSON payload: %s", err.Error()))
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "json and text fields are required")
		return
	}
	defer r.Body.Close()

	if body.Text == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "text field is required and must be a string")
		return
	}

	pdfBytes, err := th.PdfService.GeneratePdf(body.JSON, body.Text)
	if err != nil {
		if errors.Is(err, services.ErrIncompleteData) {
			writeError(w, http.StatusBadRequest, "INCOMPLETE_DATA", "Os dados do usuário ainda não estão completos")
			return
		}
		th.Logger.Error(fmt.Sprintf("Error generating PDF: %s", err.Error()))
		writeError(w, http.StatusInternalServerError, "PDF_GENERATION_ERROR", "Erro ao gerar o PDF. Tente novamente mais tarde.")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}
