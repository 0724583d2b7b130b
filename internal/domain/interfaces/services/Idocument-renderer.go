package Iservices

import "nutrition-assistant/internal/domain/entities"

// IDocumentRenderer turns a completed record plus plan text into a document
// byte stream. Implementations must reject records with Completed == false.
type IDocumentRenderer interface {
	GeneratePdf(userData entities.UserData, planText string) ([]byte, error)
}
