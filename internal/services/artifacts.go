package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/gcp"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
	"github.com/yungbote/nishad-backend/internal/platform/qrcode"
)

const (
	qrImageSize      = 512
	artifactTimeout  = 20 * time.Second
	maxCardBlobBytes = 4 << 20
)

// Artifact is one printable pass: the QR payload and the card drawn around it.
type Artifact struct {
	Key  string
	Card qrcode.Card
}

// ArtifactService renders QR images and pass cards and keeps copies in the
// bucket. Blobs are derived data; losing one only costs a re-render.
type ArtifactService interface {
	QRCode(payload string) ([]byte, error)
	Card(ctx context.Context, a Artifact) ([]byte, error)
	// Publish renders and uploads both blobs and returns the QR object key.
	Publish(ctx context.Context, a Artifact) (string, error)
}

type artifactService struct {
	log      *logger.Logger
	bucket   gcp.BucketService
	renderer *qrcode.CardRenderer
}

func NewArtifactService(log *logger.Logger, bucket gcp.BucketService, renderer *qrcode.CardRenderer) ArtifactService {
	return &artifactService{
		log:      log.With("service", "ArtifactService"),
		bucket:   bucket,
		renderer: renderer,
	}
}

func (s *artifactService) QRCode(payload string) ([]byte, error) {
	return qrcode.PNG(payload, qrImageSize)
}

func (s *artifactService) Card(ctx context.Context, a Artifact) ([]byte, error) {
	if s.bucket != nil && a.Key != "" {
		rc, err := s.bucket.DownloadFile(ctx, gcp.BucketCategoryPassCard, a.Key)
		switch {
		case err == nil:
			defer rc.Close()
			b, rerr := io.ReadAll(io.LimitReader(rc, maxCardBlobBytes))
			if rerr == nil && len(b) > 0 {
				return b, nil
			}
			s.log.Warn("cached pass card unreadable, re-rendering", "key", a.Key, "error", rerr)
		case errors.Is(err, gcp.ErrObjectNotFound):
		default:
			s.log.Warn("pass card download failed, re-rendering", "key", a.Key, "error", err)
		}
	}
	png, err := s.renderCard(a)
	if err != nil {
		return nil, err
	}
	if s.bucket != nil && a.Key != "" {
		if err := s.bucket.UploadFile(dbctx.Context{Ctx: ctx}, gcp.BucketCategoryPassCard, a.Key, bytes.NewReader(png)); err != nil {
			s.log.Warn("pass card upload failed", "key", a.Key, "error", err)
		}
	}
	return png, nil
}

func (s *artifactService) Publish(ctx context.Context, a Artifact) (string, error) {
	if s.bucket == nil {
		return "", nil
	}
	if a.Key == "" {
		return "", errors.New("artifact key is required")
	}
	ctx, cancel := context.WithTimeout(ctx, artifactTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		png, err := s.QRCode(a.Card.Payload)
		if err != nil {
			return err
		}
		return s.bucket.UploadFile(dbctx.Context{Ctx: gctx}, gcp.BucketCategoryQRCode, a.Key, bytes.NewReader(png))
	})
	g.Go(func() error {
		png, err := s.renderCard(a)
		if err != nil {
			return err
		}
		return s.bucket.UploadFile(dbctx.Context{Ctx: gctx}, gcp.BucketCategoryPassCard, a.Key, bytes.NewReader(png))
	})
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("publish artifact %s: %w", a.Key, err)
	}
	return a.Key, nil
}

func (s *artifactService) renderCard(a Artifact) ([]byte, error) {
	if s.renderer == nil {
		return nil, errors.New("pass card renderer not configured")
	}
	return s.renderer.Render(a.Card)
}
