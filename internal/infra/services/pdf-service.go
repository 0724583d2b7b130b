package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"nutrition-assistant/internal/domain/entities"
	"nutrition-assistant/internal/infra/logger"

	"github.com/jung-kurt/gofpdf"
)

// ErrIncompleteData is returned when a PDF is requested for a record that
// has not finished the intake flow.
var ErrIncompleteData = errors.New("os dados do usuário ainda não estão completos")

// PdfService renders the completed record plus plan text as an A4 document.
type PdfService struct {
	Logger *logger.Logger
}

func NewPdfService(logger *logger.Logger) *PdfService {
	return &PdfService{Logger: logger}
}

func (ps *PdfService) GeneratePdf(userData entities.UserData, planText string) ([]byte, error) {
	if !userData.Completed {
		return nil, ErrIncompleteData
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	ps.addHeader(pdf, tr)
	ps.addPersonalData(pdf, tr, userData.User)
	ps.addRestrictions(pdf, tr, userData.User)
	ps.addPlanText(pdf, tr, planText)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		ps.Logger.Error(fmt.Sprintf("Error generating PDF: %s", err.Error()))
		return nil, err
	}

	return buf.Bytes(), nil
}

func (ps *PdfService) addHeader(pdf *gofpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(46, 139, 87)
	pdf.CellFormat(0, 12, tr("PLANO ALIMENTAR PERSONALIZADO"), "", 1, "C", false, 0, "")
	pdf.Ln(8)
}

func (ps *PdfService) addPersonalData(pdf *gofpdf.Fpdf, tr func(string) string, user entities.UserProfile) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(51, 51, 51)
	pdf.CellFormat(0, 8, tr("DADOS PESSOAIS"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	lines := []string{
		fmt.Sprintf("Data: %s", time.Now().Format("02/01/2006")),
	}
	if user.Age != nil {
		lines = append(lines, fmt.Sprintf("Idade: %d anos", *user.Age))
	}
	if user.Sex != "" {
		lines = append(lines, fmt.Sprintf("Sexo: %s", user.Sex))
	}
	if user.HeightCm != nil {
		lines = append(lines, fmt.Sprintf("Altura: %d cm", *user.HeightCm))
	}
	if user.WeightKg != nil {
		lines = append(lines, fmt.Sprintf("Peso: %d kg", *user.WeightKg))
	}
	if user.ActivityLevel != "" {
		lines = append(lines, fmt.Sprintf("Nível de atividade: %s", user.ActivityLevel))
	}
	if user.Goal != "" {
		lines = append(lines, fmt.Sprintf("Objetivo: %s", user.Goal))
	}
	if user.MealsPerDay != nil {
		lines = append(lines, fmt.Sprintf("Refeições por dia: %d", *user.MealsPerDay))
	}

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(85, 85, 85)
	for _, line := range lines {
		pdf.CellFormat(0, 6, tr("• "+line), "", 1, "L", false, 0, "")
	}
}

func (ps *PdfService) addRestrictions(pdf *gofpdf.Fpdf, tr func(string) string, user entities.UserProfile) {
	if len(user.DietaryRestrictions) == 0 && len(user.Allergies) == 0 &&
		len(user.Preferences) == 0 && len(user.MedicalConditions) == 0 {
		return
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(51, 51, 51)
	pdf.CellFormat(0, 8, tr("RESTRIÇÕES E PREFERÊNCIAS"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(85, 85, 85)

	if len(user.DietaryRestrictions) > 0 {
		pdf.CellFormat(0, 6, tr("• Restrições alimentares: "+strings.Join(user.DietaryRestrictions, ", ")), "", 1, "L", false, 0, "")
	}
	if len(user.Allergies) > 0 {
		pdf.CellFormat(0, 6, tr("• Alergias: "+strings.Join(user.Allergies, ", ")), "", 1, "L", false, 0, "")
	}
	if len(user.Preferences) > 0 {
		pdf.CellFormat(0, 6, tr("• Preferências/aversões: "+strings.Join(user.Preferences, ", ")), "", 1, "L", false, 0, "")
	}
	if len(user.MedicalConditions) > 0 {
		pdf.CellFormat(0, 6, tr("• Condições médicas: "+strings.Join(user.MedicalConditions, ", ")), "", 1, "L", false, 0, "")
	}
}

// addPlanText lays out the plan body, honoring markdown-ish headings,
// bullets and **bold** segments. The export marker line is skipped.
func (ps *PdfService) addPlanText(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(51, 51, 51)
	pdf.CellFormat(0, 8, tr("PLANO NUTRICIONAL"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == PdfExportMarker {
			continue
		}

		switch {
		case trimmed == "":
			pdf.Ln(2)

		case strings.HasPrefix(trimmed, "###"):
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 12)
			pdf.SetTextColor(46, 139, 87)
			pdf.CellFormat(0, 6, tr(stripHeading(trimmed)), "", 1, "L", false, 0, "")

		case strings.HasPrefix(trimmed, "##"):
			pdf.Ln(3)
			pdf.SetFont("Helvetica", "B", 14)
			pdf.SetTextColor(46, 139, 87)
			pdf.CellFormat(0, 7, tr(stripHeading(trimmed)), "", 1, "L", false, 0, "")

		case strings.HasPrefix(trimmed, "#"):
			pdf.Ln(4)
			pdf.SetFont("Helvetica", "B", 16)
			pdf.SetTextColor(51, 51, 51)
			pdf.CellFormat(0, 8, tr(stripHeading(trimmed)), "", 1, "L", false, 0, "")

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "• "):
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetTextColor(85, 85, 85)
			pdf.MultiCell(0, 5, tr(trimmed), "", "L", false)

		case strings.Contains(trimmed, "**"):
			ps.writeBoldSegments(pdf, tr, trimmed)

		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetTextColor(85, 85, 85)
			pdf.MultiCell(0, 5, tr(trimmed), "", "J", false)
		}
	}
}

// writeBoldSegments alternates regular and bold fonts across **-delimited
// parts of a single line.
func (ps *PdfService) writeBoldSegments(pdf *gofpdf.Fpdf, tr func(string) string, line string) {
	parts := strings.Split(line, "**")
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i%2 == 0 {
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetTextColor(85, 85, 85)
		} else {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.SetTextColor(51, 51, 51)
		}
		pdf.Write(5, tr(part))
	}
	pdf.Ln(6)
}

func stripHeading(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, "#"))
}
