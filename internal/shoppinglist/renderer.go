// Package shoppinglist renders an aggregated shopping list as a downloadable document.
package shoppinglist

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/gofiber/fiber/v2/log"
)

// Title heads every rendered list.
const Title = "Shopping list"

const (
	pdfFontFamily = "body"
	titleSize     = 16
	lineSize      = 12
	lineHeight    = 8
)

// Line is one aggregated ingredient.
type Line struct {
	Name   string
	Unit   string
	Amount int64
}

// String formats the line as "name: amount unit".
func (l Line) String() string {
	return fmt.Sprintf("%s: %d %s", l.Name, l.Amount, l.Unit)
}

// Document is a rendered file ready to be served as an attachment.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Renderer produces PDF documents when a TTF font is available and plain text otherwise.
type Renderer struct {
	font []byte
}

// NewRenderer loads the TTF font at fontPath. A missing or unreadable font selects the
// plain text output.
func NewRenderer(fontPath string) *Renderer {
	if fontPath == "" {
		log.Warnf("shopping list font not configured, falling back to plain text")
		return &Renderer{}
	}
	font, err := os.ReadFile(fontPath)
	if err != nil {
		log.Warnf("shopping list font %s unavailable, falling back to plain text: %v", fontPath, err)
		return &Renderer{}
	}
	return &Renderer{font: font}
}

// NewRendererFromFont uses the given TTF bytes.
func NewRendererFromFont(ttf []byte) *Renderer {
	return &Renderer{font: ttf}
}

// Render writes lines in the given order.
func (r *Renderer) Render(lines []Line) (*Document, error) {
	if len(r.font) > 0 {
		doc, err := r.renderPDF(lines)
		if err == nil {
			return doc, nil
		}
		log.Errorf("failed to render shopping list pdf, falling back to plain text: %v", err)
	}
	return renderText(lines), nil
}

func (r *Renderer) renderPDF(lines []Line) (*Document, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	pdf.AddUTF8FontFromBytes(pdfFontFamily, "", r.font)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont(pdfFontFamily, "", titleSize)
	pdf.CellFormat(0, lineHeight*1.5, Title, "", 1, "L", false, 0, "")
	pdf.Ln(lineHeight / 2)
	pdf.SetFont(pdfFontFamily, "", lineSize)
	for _, line := range lines {
		pdf.CellFormat(0, lineHeight, line.String(), "", 1, "L", false, 0, "")
	}
	if err := pdf.Error(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return &Document{
		Filename:    "shopping_list.pdf",
		ContentType: "application/pdf",
		Body:        buf.Bytes(),
	}, nil
}

func renderText(lines []Line) *Document {
	var b strings.Builder
	b.WriteString(Title)
	b.WriteString("\n\n")
	for _, line := range lines {
		b.WriteString(line.String())
		b.WriteByte('\n')
	}
	return &Document{
		Filename:    "shopping_list.txt",
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(b.String()),
	}
}
