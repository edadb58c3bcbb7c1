package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nomenclator/internal/cache"
	"nomenclator/internal/fieldblock"
	"nomenclator/internal/metrics"
)

const allowedExtension = ".csv"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type FieldGroupCache interface {
	Get(ctx context.Context, digest string) ([]fieldblock.FieldGroup, bool, error)
	Set(ctx context.Context, digest string, groups []fieldblock.FieldGroup) error
}

type FieldService struct {
	parser    *fieldblock.Parser
	cache     FieldGroupCache
	uploadDir string
	keepFiles bool
	maxBytes  int64
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

type FieldServiceOptions struct {
	UploadDir string
	KeepFiles bool
	MaxBytes  int64
}

func NewFieldService(
	parser *fieldblock.Parser,
	groupCache FieldGroupCache,
	opts FieldServiceOptions,
	m *metrics.Metrics,
	logger *zap.Logger,
) *FieldService {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 << 20
	}
	return &FieldService{
		parser:    parser,
		cache:     groupCache,
		uploadDir: opts.UploadDir,
		keepFiles: opts.KeepFiles,
		maxBytes:  opts.MaxBytes,
		metrics:   m,
		logger:    logger,
	}
}

// UploadInput is an uploaded file as received from the client.
type UploadInput struct {
	Filename string
	Content  io.Reader
}

// ParseUpload validates the upload, archives it when configured and returns
// the field groups it describes.
func (s *FieldService) ParseUpload(ctx context.Context, input UploadInput) ([]fieldblock.FieldGroup, error) {
	if input.Filename == "" {
		s.metrics.Uploads.WithLabelValues("rejected").Inc()
		return nil, ErrNoFileSelected
	}
	if !AllowedFile(input.Filename) {
		s.metrics.Uploads.WithLabelValues("rejected").Inc()
		return nil, ErrUnsupportedFile
	}
	if input.Content == nil {
		s.metrics.Uploads.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidInput
	}

	content, err := io.ReadAll(io.LimitReader(input.Content, s.maxBytes+1))
	if err != nil {
		s.metrics.Uploads.WithLabelValues("failed").Inc()
		s.logger.Error("read upload failed", zap.String("filename", input.Filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	if int64(len(content)) > s.maxBytes {
		s.metrics.Uploads.WithLabelValues("rejected").Inc()
		return nil, ErrFileTooLarge
	}

	if s.keepFiles {
		if path, err := s.archive(input.Filename, content); err != nil {
			s.logger.Warn("archive upload failed", zap.String("filename", input.Filename), zap.Error(err))
		} else {
			s.logger.Info("file saved", zap.String("path", path))
		}
	}

	digest := cache.Digest(content)
	if s.cache != nil {
		groups, hit, err := s.cache.Get(ctx, digest)
		if err != nil {
			s.logger.Warn("parse cache lookup failed", zap.Error(err))
		} else if hit {
			s.metrics.ParseCacheHits.Inc()
			s.metrics.Uploads.WithLabelValues("ok").Inc()
			return groups, nil
		}
	}

	groups, err := s.parser.ParseReader(bytes.NewReader(content))
	if err != nil {
		s.metrics.Uploads.WithLabelValues("failed").Inc()
		s.logger.Error("error parsing csv", zap.String("filename", input.Filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	s.logger.Info("csv parsed", zap.String("filename", input.Filename), zap.Int("fields", len(groups)))

	if s.cache != nil {
		if err := s.cache.Set(ctx, digest, groups); err != nil {
			s.logger.Warn("parse cache store failed", zap.Error(err))
		}
	}

	s.metrics.FieldsParsed.Observe(float64(len(groups)))
	s.metrics.Uploads.WithLabelValues("ok").Inc()
	return groups, nil
}

func (s *FieldService) archive(filename string, content []byte) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir failed: %w", err)
	}
	path := filepath.Join(s.uploadDir, uuid.NewString()+"-"+SanitizeFilename(filename))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write upload failed: %w", err)
	}
	return path, nil
}

// AllowedFile reports whether filename carries a csv extension, ignoring case.
func AllowedFile(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == allowedExtension
}

// SanitizeFilename reduces an uploaded name to a safe base name made of
// letters, digits, dot, dash and underscore.
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "upload.csv"
	}
	return base
}
