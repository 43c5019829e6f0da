package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"tcm-clinic/internal/model"
)

const (
	leftMargin = 50
	topMargin  = 42
	lineHeight = 14
)

// The library falls back to time.Now() for a zero document date, so the date
// is pinned to keep identical records byte-identical.
var fixedDocDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Render serializes one record into a Letter-sized PDF, one text line at a
// time from the top left, with automatic page breaks. Output depends only on
// the record's field values: the document dates are pinned so two renders of
// the same record are byte-identical.
func Render(record *model.Record) ([]byte, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCreationDate(fixedDocDate)
	doc.SetModificationDate(fixedDocDate)
	doc.SetMargins(leftMargin, topMargin, leftMargin)
	doc.SetAutoPageBreak(true, topMargin)
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)

	tr := doc.UnicodeTranslatorFromDescriptor("")
	for _, line := range documentLines(record) {
		doc.CellFormat(0, lineHeight, tr(line), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf failed: %w", err)
	}
	return buf.Bytes(), nil
}

// documentLines builds the fixed line sequence of the document. Multi-line
// field values are split so every embedded line break becomes its own text
// line.
func documentLines(record *model.Record) []string {
	fields := []string{
		fmt.Sprintf("MEDICAL RECORD #%d", record.ID),
		"===============================",
		fmt.Sprintf("Patient name: %s", record.PatientName),
		fmt.Sprintf("Created at: %s", record.CreatedAt.Format("02/01/2006 15:04:05")),
		"",
		"Reported symptoms:",
		record.Symptoms,
		"",
		"Treatment method:",
		record.Treatment,
		"",
		"--------------------------------",
		"AI REPORT:",
		"--------------------------------",
		record.AIReport,
	}

	var lines []string
	for _, field := range fields {
		lines = append(lines, strings.Split(field, "\n")...)
	}
	return lines
}
