package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-interpret-api/internal/observability"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service uploads audio recordings to Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
		now:    time.Now,
	}, nil
}

// Upload sends the recording to Cloudinary and returns a secure URL. name may carry a
// sub-folder ("assignments/intro.webm"), which is appended to the configured folder.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	start := time.Now()
	folder, publicID := s.split(name)

	// Cloudinary stores audio under the "video" resource type.
	params := uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "video",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		observability.AudioUploadLatency().WithLabelValues("cloudinary", "error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}
	if result.Error.Message != "" {
		observability.AudioUploadLatency().WithLabelValues("cloudinary", "error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}

	observability.AudioUploadLatency().WithLabelValues("cloudinary", "ok").Observe(time.Since(start).Seconds())
	s.logger.Info().Str("public_id", result.PublicID).Int("bytes", result.Bytes).Msg("audio uploaded to cloudinary")

	return result.SecureURL, nil
}

func (s *Service) split(name string) (string, string) {
	dir, file := path.Split(strings.Trim(name, "/"))
	folder := strings.Trim(path.Join(s.folder, dir), "/")
	return folder, buildPublicID(file, s.now())
}

func buildPublicID(name string, now time.Time) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = "recording"
	}

	return fmt.Sprintf("%s-%d", base, now.UnixNano())
}
