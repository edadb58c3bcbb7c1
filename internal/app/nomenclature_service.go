package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"nomenclator/internal/export"
	"nomenclator/internal/metrics"
	"nomenclator/internal/model"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type NomenclatureStore interface {
	Create(ctx context.Context, record *model.Nomenclature) error
	ListAll(ctx context.Context) ([]model.Nomenclature, error)
}

type RecordEventPublisher interface {
	Publish(ctx context.Context, event model.RecordEvent) error
}

type NomenclatureService struct {
	store     NomenclatureStore
	publisher RecordEventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewNomenclatureService(
	store NomenclatureStore,
	publisher RecordEventPublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *NomenclatureService {
	return &NomenclatureService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

type SaveInput struct {
	Nomenclature string
	Project      string
	Extension    string
	User         string
}

// Compose joins the selected values with separator, skipping blanks.
func (s *NomenclatureService) Compose(separator string, values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, separator)
}

// Save appends a record stamped with the local date and time. Fields are
// stored as given.
func (s *NomenclatureService) Save(ctx context.Context, input SaveInput) (*model.Nomenclature, error) {
	now := s.now()
	record := &model.Nomenclature{
		Nomenclature: input.Nomenclature,
		Project:      input.Project,
		Extension:    input.Extension,
		Date:         now.Format(dateLayout),
		Time:         now.Format(timeLayout),
		User:         input.User,
	}
	if err := s.store.Create(ctx, record); err != nil {
		s.metrics.StorageErrors.WithLabelValues("append").Inc()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	s.metrics.RecordsSaved.Inc()
	s.logger.Info("nomenclature saved",
		zap.Uint("id", record.ID),
		zap.String("nomenclature", record.Nomenclature),
		zap.String("project", record.Project),
	)

	if s.publisher != nil {
		event := model.RecordEvent{
			Type:         model.EventRecordSaved,
			RecordID:     record.ID,
			Nomenclature: record.Nomenclature,
			Project:      record.Project,
			User:         record.User,
			OccurredAt:   now,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish record event failed", zap.Uint("id", record.ID), zap.Error(err))
		}
	}
	return record, nil
}

// List returns every saved record in id order.
func (s *NomenclatureService) List(ctx context.Context) ([]model.Nomenclature, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		s.metrics.StorageErrors.WithLabelValues("list").Inc()
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if records == nil {
		records = []model.Nomenclature{}
	}
	return records, nil
}

// Export writes the full history as an XLSX workbook and returns the number
// of record rows written.
func (s *NomenclatureService) Export(ctx context.Context, w io.Writer) (int, error) {
	records, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := export.WriteXLSX(w, records); err != nil {
		return 0, err
	}
	s.metrics.Exports.Inc()
	return len(records), nil
}
