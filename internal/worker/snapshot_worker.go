package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"nomenclator/internal/export"
	"nomenclator/internal/model"
	"nomenclator/internal/platform/rabbitmq"
)

type RecordLister interface {
	ListAll(ctx context.Context) ([]model.Nomenclature, error)
}

// SnapshotWorker consumes record events and rewrites an XLSX snapshot of the
// whole history at snapshotPath after each one.
type SnapshotWorker struct {
	conn         *amqp.Connection
	store        RecordLister
	queueName    string
	snapshotPath string
	logger       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSnapshotWorker(
	conn *amqp.Connection,
	store RecordLister,
	queueName string,
	snapshotPath string,
	logger *zap.Logger,
) *SnapshotWorker {
	return &SnapshotWorker{
		conn:         conn,
		store:        store,
		queueName:    queueName,
		snapshotPath: snapshotPath,
		logger:       logger,
	}
}

func (w *SnapshotWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.Handle(workerCtx, d.Body); err != nil {
					w.logger.Error("snapshot worker failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

// Handle decodes one event and refreshes the snapshot.
func (w *SnapshotWorker) Handle(ctx context.Context, body []byte) error {
	var event model.RecordEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode record event failed: %w", err)
	}
	if event.Type != model.EventRecordSaved {
		w.logger.Debug("ignoring event", zap.String("type", event.Type))
		return nil
	}
	if w.snapshotPath == "" {
		return nil
	}

	if err := w.WriteSnapshot(ctx); err != nil {
		return err
	}
	w.logger.Info("snapshot refreshed",
		zap.Uint("record_id", event.RecordID),
		zap.String("path", w.snapshotPath),
	)
	return nil
}

// WriteSnapshot exports the full history to a temp file next to the
// snapshot and renames it into place.
func (w *SnapshotWorker) WriteSnapshot(ctx context.Context) error {
	records, err := w.store.ListAll(ctx)
	if err != nil {
		return err
	}

	dir := filepath.Dir(w.snapshotPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir failed: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.xlsx")
	if err != nil {
		return fmt.Errorf("create snapshot temp file failed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := export.WriteXLSX(tmp, records); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot temp file failed: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.snapshotPath); err != nil {
		return fmt.Errorf("replace snapshot failed: %w", err)
	}
	return nil
}

func (w *SnapshotWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
