package dto

import "nutrition-assistant/internal/domain/entities"

type PdfExportRequest struct {
	JSON entities.UserData `json:"json"`
	Text string            `json:"text"`
}
