package idcard

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/spatium-offices/vms/config"
	"github.com/spatium-offices/vms/services/logging"
	"github.com/spatium-offices/vms/services/visitor"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	cardWidth  = 400
	cardHeight = 560
	qrSize     = 240
)

// Notifier delivers the identity-card download link.
type Notifier interface {
	SendIdentityCardLink(to, cardURL string) error
}

// Service renders visitor identity cards: a QR code pointing at the card
// URL, and a composed PNG badge carrying the visitor's details.
type Service struct {
	config   *config.Config
	visitors *visitor.Service
	notifier Notifier
	logger   *logging.Service
}

func NewService(cfg *config.Config, visitors *visitor.Service, logger *logging.Service) *Service {
	return &Service{
		config:   cfg,
		visitors: visitors,
		logger:   logger,
	}
}

func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// CardURL is the externally reachable identity-card endpoint for a visitor,
// the payload embedded in the QR code.
func (s *Service) CardURL(visitorID uint) string {
	return fmt.Sprintf("%s/api/v1/vms/identity-card/?visitor_id=%d", s.config.App.URL, visitorID)
}

// QRCodePNG renders the visitor's card URL as a PNG QR code.
func (s *Service) QRCodePNG(visitorID uint) ([]byte, error) {
	if _, err := s.visitors.Get(visitorID); err != nil {
		return nil, err
	}

	code, err := qr.Encode(s.CardURL(visitorID), qr.L, qr.Auto)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to encode QR code",
				zap.Uint("visitor_id", visitorID),
				zap.Error(err))
		}
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	scaled, err := barcode.Scale(code, qrSize, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to scale QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("failed to encode QR PNG: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("QR code generated", zap.Uint("visitor_id", visitorID))
	}

	return buf.Bytes(), nil
}

// CardPNG composes the identity-card badge: visitor name, origin company,
// purpose of visit and the QR code on a white card.
func (s *Service) CardPNG(visitorID uint) ([]byte, error) {
	v, err := s.visitors.Get(visitorID)
	if err != nil {
		return nil, err
	}

	code, err := qr.Encode(s.CardURL(visitorID), qr.L, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	scaled, err := barcode.Scale(code, qrSize, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to scale QR code: %w", err)
	}

	card := image.NewRGBA(image.Rect(0, 0, cardWidth, cardHeight))
	draw.Draw(card, card.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	header := image.Rect(0, 0, cardWidth, 72)
	draw.Draw(card, header, image.NewUniform(color.RGBA{R: 0x1f, G: 0x3a, B: 0x5f, A: 0xff}), image.Point{}, draw.Src)

	drawText(card, s.config.App.Name, 16, 44, color.White)
	drawText(card, "VISITOR", 16, 110, color.Black)
	drawText(card, v.Name, 16, 140, color.Black)
	if v.FromCompany != "" {
		drawText(card, v.FromCompany, 16, 170, color.Gray{Y: 0x60})
	}
	if v.Purpose != nil {
		drawText(card, "Purpose: "+v.Purpose.Name, 16, 200, color.Gray{Y: 0x60})
	}

	qrPos := image.Rect((cardWidth-qrSize)/2, 250, (cardWidth-qrSize)/2+qrSize, 250+qrSize)
	draw.Draw(card, qrPos, scaled, image.Point{}, draw.Src)

	drawText(card, v.CreatedAt.Format("02 Jan 2006 15:04"), 16, cardHeight-24, color.Gray{Y: 0x60})

	var buf bytes.Buffer
	if err := png.Encode(&buf, card); err != nil {
		return nil, fmt.Errorf("failed to encode identity card PNG: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("identity card rendered",
			zap.Uint("visitor_id", visitorID),
			zap.String("visitor_name", v.Name))
	}

	return buf.Bytes(), nil
}

// EmailCardLink sends the visitor a link to download their identity card.
func (s *Service) EmailCardLink(visitorID uint) error {
	v, err := s.visitors.Get(visitorID)
	if err != nil {
		return err
	}
	if v.Email == "" {
		return visitor.ErrInvalidEmailFormat
	}
	if s.notifier == nil {
		return nil
	}

	return s.notifier.SendIdentityCardLink(v.Email, s.CardURL(visitorID))
}

func drawText(dst *image.RGBA, text string, x, y int, col color.Color) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
