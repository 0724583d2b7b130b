package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutrition-assistant/internal/domain/dto"
	"nutrition-assistant/internal/domain/entities"
	"nutrition-assistant/internal/infra/logger"
	"nutrition-assistant/internal/infra/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	return "", errors.New("backend unavailable")
}

// newTestRouter wires the real services behind the handlers, with a failing
// generator so every plan comes from the deterministic fallback.
func newTestRouter(t *testing.T) (*mux.Router, *services.SessionService) {
	t.Helper()

	log := logger.NewLogger(context.Background(), false)
	sessionService := services.NewSessionService(time.Hour, log)
	planService := services.NewPlanService(log, failingGenerator{}, time.Second)
	assistant := services.NewAssistantService(log, sessionService, planService, failingGenerator{}, time.Second)
	pdfService := services.NewPdfService(log)

	router := mux.NewRouter()
	httpHandlers := NewHttpHandlers(log, sessionService, assistant)
	pdfHandlers := NewPdfHandlers(log, pdfService)

	router.HandleFunc("/message", httpHandlers.ProcessMessage).Methods(http.MethodPost)
	router.HandleFunc("/session/{sessionId}", httpHandlers.GetSession).Methods(http.MethodGet)
	router.HandleFunc("/session/{sessionId}", httpHandlers.DeleteSession).Methods(http.MethodDelete)
	router.HandleFunc("/sessions", httpHandlers.ListSessions).Methods(http.MethodGet)
	router.HandleFunc("/export-pdf", pdfHandlers.ExportPdf).Methods(http.MethodPost)
	router.HandleFunc("/preview-pdf", pdfHandlers.PreviewPdf).Methods(http.MethodPost)

	return router, sessionService
}

func postJSON(t *testing.T, router *mux.Router, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestProcessMessageEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("missing sessionId is rejected", func(t *testing.T) {
		rec := postJSON(t, router, "/message", dto.MessageRequest{Message: "olá"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr dto.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Equal(t, "VALIDATION_ERROR", apiErr.Error)
	})

	t.Run("missing message is rejected", func(t *testing.T) {
		rec := postJSON(t, router, "/message", dto.MessageRequest{SessionID: "s1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("valid request returns the assistant response", func(t *testing.T) {
		rec := postJSON(t, router, "/message", dto.MessageRequest{SessionID: "s1", Message: "sim"})
		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.MessageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.False(t, response.Done)
		assert.Equal(t, "Perfeito! Vamos começar. Qual é a sua idade?", response.Text)
		require.NotNil(t, response.JSON)
		assert.False(t, response.JSON.Completed)
	})
}

func TestSessionEndpoints(t *testing.T) {
	router, sessionService := newTestRouter(t)

	t.Run("get unknown session returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/session/missing", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("summary is idempotent without new messages", func(t *testing.T) {
		postJSON(t, router, "/message", dto.MessageRequest{SessionID: "s2", Message: "sim"})

		fetch := func() dto.SessionSummary {
			req := httptest.NewRequest(http.MethodGet, "/session/s2", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			var summary dto.SessionSummary
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
			return summary
		}

		first := fetch()
		second := fetch()

		assert.Equal(t, "s2", first.SessionID)
		assert.Equal(t, entities.StepAge, first.CurrentStep)
		assert.Equal(t, 2, first.MessagesCount)
		assert.Equal(t, first.CurrentStep, second.CurrentStep)
		assert.Equal(t, first.MessagesCount, second.MessagesCount)
		assert.Equal(t, first.Completed, second.Completed)
	})

	t.Run("delete removes the session", func(t *testing.T) {
		sessionService.CreateSession("s3")

		req := httptest.NewRequest(http.MethodDelete, "/session/s3", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		req = httptest.NewRequest(http.MethodDelete, "/session/s3", nil)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("sessions endpoint reports the count", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Contains(t, payload, "totalSessions")
	})
}

func TestPdfEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	completed := func() entities.UserData {
		age := 30
		return entities.UserData{
			Completed: true,
			User: entities.UserProfile{
				Age:                 &age,
				Sex:                 "feminino",
				DietaryRestrictions: []string{},
				Allergies:           []string{},
				Preferences:         []string{},
				MedicalConditions:   []string{},
			},
		}
	}

	t.Run("incomplete record is rejected", func(t *testing.T) {
		rec := postJSON(t, router, "/export-pdf", dto.PdfExportRequest{
			JSON: entities.UserData{},
			Text: "plano",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr dto.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Equal(t, "INCOMPLETE_DATA", apiErr.Error)
	})

	t.Run("missing text is rejected", func(t *testing.T) {
		rec := postJSON(t, router, "/export-pdf", dto.PdfExportRequest{JSON: completed()})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("export returns a PDF attachment", func(t *testing.T) {
		rec := postJSON(t, router, "/export-pdf", dto.PdfExportRequest{
			JSON: completed(),
			Text: "# PLANO\n\n- comer bem",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
		assert.Equal(t, "%PDF", rec.Body.String()[:4])
	})

	t.Run("preview returns the PDF inline", func(t *testing.T) {
		rec := postJSON(t, router, "/preview-pdf", dto.PdfExportRequest{
			JSON: completed(),
			Text: "# PLANO\n\n- comer bem",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "inline", rec.Header().Get("Content-Disposition"))
	})
}
