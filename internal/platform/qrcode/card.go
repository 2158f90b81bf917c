package qrcode

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	cardWidth   = 600
	cardHeight  = 900
	cardPadding = 36
	headerH     = 120
	qrSide      = 420
)

var (
	defaultAccent = color.NRGBA{R: 0x0B, G: 0x5F, B: 0xA5, A: 0xFF}
	inkColor      = color.NRGBA{R: 0x1F, G: 0x23, B: 0x28, A: 0xFF}
	mutedColor    = color.NRGBA{R: 0x6A, G: 0x73, B: 0x7D, A: 0xFF}
)

type CardLine struct {
	Label string
	Value string
}

// Card is the printable face of a pass.
type Card struct {
	Title    string
	Subtitle string
	Payload  string
	Lines    []CardLine
	Accent   color.Color
}

// CardRenderer draws pass cards. It is safe for concurrent use: faces are
// created per render because truetype faces cache glyphs without locking.
type CardRenderer struct {
	font *truetype.Font
}

// NewCardRenderer loads the TTF at fontPath, or the embedded Go Regular face
// when fontPath is empty.
func NewCardRenderer(fontPath string) (*CardRenderer, error) {
	raw := goregular.TTF
	if p := strings.TrimSpace(fontPath); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		raw = b
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return &CardRenderer{font: parsed}, nil
}

func (r *CardRenderer) face(size float64) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Render returns the card as PNG bytes.
func (r *CardRenderer) Render(card Card) ([]byte, error) {
	if r == nil || r.font == nil {
		return nil, fmt.Errorf("qrcode: card renderer not initialised")
	}
	qr, err := Image(card.Payload, qrSide)
	if err != nil {
		return nil, err
	}

	accent := card.Accent
	if accent == nil {
		accent = defaultAccent
	}

	dc := gg.NewContext(cardWidth, cardHeight)
	dc.SetColor(color.White)
	dc.Clear()

	// header band
	dc.SetColor(accent)
	dc.DrawRectangle(0, 0, cardWidth, headerH)
	dc.Fill()

	titleFace := r.face(40)
	defer titleFace.Close()
	dc.SetFontFace(titleFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(strings.TrimSpace(card.Title), cardWidth/2, headerH/2-12, 0.5, 0.5)

	subFace := r.face(22)
	defer subFace.Close()
	dc.SetFontFace(subFace)
	dc.DrawStringAnchored(strings.TrimSpace(card.Subtitle), cardWidth/2, headerH/2+28, 0.5, 0.5)

	// QR, scaled onto an exact square so module edges stay crisp
	dst := imaging.Resize(qr, qrSide, qrSide, imaging.NearestNeighbor)
	qrTop := headerH + 24
	dc.DrawImage(dst, (cardWidth-qrSide)/2, qrTop)

	labelFace := r.face(18)
	defer labelFace.Close()
	valueFace := r.face(24)
	defer valueFace.Close()

	y := float64(qrTop + qrSide + 40)
	for _, line := range card.Lines {
		if y > cardHeight-cardPadding {
			break
		}
		dc.SetFontFace(labelFace)
		dc.SetColor(mutedColor)
		dc.DrawString(strings.ToUpper(strings.TrimSpace(line.Label)), cardPadding, y)

		dc.SetFontFace(valueFace)
		dc.SetColor(inkColor)
		dc.DrawStringAnchored(truncate(dc, strings.TrimSpace(line.Value), cardWidth/2-cardPadding), cardWidth-cardPadding, y, 1, 0)
		y += 44
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(dc *gg.Context, s string, max float64) string {
	if w, _ := dc.MeasureString(s); w <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 1 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if w, _ := dc.MeasureString(candidate); w <= max {
			return candidate
		}
	}
	return s
}
