// Package document assembles captured slides into a paginated PDF.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strconv"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/font"
	"seehuhn.de/go/pdf/font/standard"
	"seehuhn.de/go/pdf/graphics/color"
	pdfimage "seehuhn.de/go/pdf/graphics/image"
)

// Page size in PDF units; one unit per logical slide pixel.
const (
	PageWidth  = 1920
	PageHeight = 1080
)

const (
	stampSize   = 28.0
	stampMargin = 36.0
)

// Paper is the landscape page every slide is placed on.
var Paper = &pdf.Rectangle{URx: PageWidth, URy: PageHeight}

// PDF writes one full-bleed page per captured slide.
type PDF struct {
	doc   *document.MultiPage
	font  font.Instance
	pages int
}

// NewPDF starts a document that is written to w when closed.
func NewPDF(w io.Writer) (*PDF, error) {
	doc, err := document.WriteMultiPage(w, Paper, pdf.V1_7, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start PDF: %w", err)
	}
	F, err := standard.Helvetica.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load stamp font: %w", err)
	}
	return &PDF{doc: doc, font: F}, nil
}

// AddPage decodes an encoded capture (JPEG or PNG) and appends it as the
// next page. When stamp is true the page number is drawn in the
// bottom-right corner.
func (p *PDF) AddPage(data []byte, pageNumber int, stamp bool) error {
	if p.doc == nil {
		return errors.New("document: already closed")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode capture for page %d: %w", pageNumber, err)
	}

	page := p.doc.AddPage()

	page.PushGraphicsState()
	page.Transform(matrix.Matrix{PageWidth, 0, 0, PageHeight, 0, 0})
	page.DrawXObject(pdfimage.FromImage(img, color.SpaceDeviceRGB, 8))
	page.PopGraphicsState()

	if stamp {
		p.stamp(page, pageNumber)
	}

	if err := page.Close(); err != nil {
		return fmt.Errorf("failed to write page %d: %w", pageNumber, err)
	}
	p.pages++
	return nil
}

func (p *PDF) stamp(page *document.Page, pageNumber int) {
	label := strconv.Itoa(pageNumber)
	boxW := stampSize*0.6*float64(len(label)) + 2*16
	boxH := stampSize + 16
	x := PageWidth - stampMargin - boxW
	y := stampMargin

	page.PushGraphicsState()
	page.SetFillColor(color.DeviceGray(0.1))
	page.Rectangle(x, y, boxW, boxH)
	page.Fill()
	page.PopGraphicsState()

	page.TextBegin()
	page.TextSetFont(p.font, stampSize)
	page.SetFillColor(color.DeviceGray(1))
	page.TextFirstLine(x+16, y+10)
	// Helvetica's built-in encoding maps ASCII digits to themselves.
	page.TextShowRaw(pdf.String(label))
	page.TextEnd()
}

// Pages returns how many pages have been written.
func (p *PDF) Pages() int { return p.pages }

// Close finishes the document and flushes it to the writer.
func (p *PDF) Close() error {
	if p.doc == nil {
		return nil
	}
	doc := p.doc
	p.doc = nil
	if err := doc.Close(); err != nil {
		return fmt.Errorf("failed to finish PDF: %w", err)
	}
	return nil
}
