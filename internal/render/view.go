package render

import (
	"fmt"

	"github.com/edurag/tutorcli/internal/model"
)

// MaterialRow is the view description of one uploaded material.
type MaterialRow struct {
	ID       string
	Icon     string
	Title    string
	Subject  string
	Grade    string
	Uploaded string
	Badge    StatusBadge
}

// StatusBadge is the view description of a processing status.
type StatusBadge struct {
	Icon  string
	Label string
}

// SourceLine is the view description of one retrieval citation.
type SourceLine struct {
	Title      string
	Subject    string
	Grade      string
	Similarity string // percentage, one decimal place
}

// NewMaterialRow maps a material record to its view description.
func NewMaterialRow(m *model.Material) MaterialRow {
	return MaterialRow{
		ID:       m.ID,
		Icon:     FileIcon(m.FileExt()),
		Title:    m.Title,
		Subject:  m.Subject.Name,
		Grade:    fmt.Sprintf("Grade %d", m.Grade.Level),
		Uploaded: m.UploadedAt.Local().Format("Jan 2, 2006 15:04"),
		Badge:    NewStatusBadge(m.Status),
	}
}

// NewStatusBadge maps a processing status to its badge.
func NewStatusBadge(status model.Status) StatusBadge {
	return StatusBadge{Icon: statusIcon(status), Label: string(status)}
}

// NewSourceLine maps a citation to its view description.
func NewSourceLine(s model.Source) SourceLine {
	title := s.Title
	if title == "" {
		title = "Unknown Source"
	}
	subject := s.Subject
	if subject == "" {
		subject = "Unknown"
	}
	grade := s.Grade
	if grade == "" {
		grade = "Unknown"
	}
	return SourceLine{
		Title:      title,
		Subject:    subject,
		Grade:      grade,
		Similarity: fmt.Sprintf("%.1f%%", s.Similarity*100),
	}
}

// FileIcon picks a glyph from the original file extension (with the dot).
func FileIcon(ext string) string {
	switch ext {
	case ".pdf":
		return "📕"
	case ".docx":
		return "📘"
	default:
		return "📄"
	}
}

func statusIcon(status model.Status) string {
	switch status {
	case model.StatusProcessing:
		return "🔄"
	case model.StatusCompleted:
		return "✅"
	case model.StatusFailed:
		return "❌"
	default:
		return "⏳"
	}
}
