package services

import (
	"context"
	"testing"

	"nutrition-assistant/internal/domain/entities"
	"nutrition-assistant/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePdf(t *testing.T) {
	log := logger.NewLogger(context.Background(), false)
	ps := NewPdfService(log)

	t.Run("rejects incomplete records", func(t *testing.T) {
		_, err := ps.GeneratePdf(entities.UserData{}, "algum plano")
		assert.ErrorIs(t, err, ErrIncompleteData)
	})

	t.Run("renders a completed record with the fallback plan", func(t *testing.T) {
		plan := GenerateFallbackPlan(completedUserData()) + "\n\n" + PdfExportMarker

		pdfBytes, err := ps.GeneratePdf(completedUserData(), plan)

		require.NoError(t, err)
		require.NotEmpty(t, pdfBytes)
		assert.Equal(t, "%PDF", string(pdfBytes[:4]))
	})

	t.Run("renders bold segments and plain lines", func(t *testing.T) {
		text := "# TÍTULO\n\n## Seção\n- item um\nLinha com **destaque** no meio\ntexto normal"

		pdfBytes, err := ps.GeneratePdf(completedUserData(), text)

		require.NoError(t, err)
		assert.NotEmpty(t, pdfBytes)
	})
}
