package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/newthinker/insight/internal/config"
	"github.com/newthinker/insight/internal/core"
	"go.uber.org/zap"
)

// Recorder counts archive write attempts. Satisfied by metrics.Registry.
type Recorder interface {
	RecordArchive(backend, status string)
}

// Archiver serializes analysis payloads into a Storage backend, one JSON
// document per payload, keyed by ticker and month.
type Archiver struct {
	storage  Storage
	backend  string
	recorder Recorder
	logger   *zap.Logger
}

// NewArchiver wraps a storage backend. recorder and logger may be nil.
func NewArchiver(storage Storage, backend string, recorder Recorder, logger *zap.Logger) *Archiver {
	return &Archiver{storage: storage, backend: backend, recorder: recorder, logger: logger}
}

// NewFromConfig builds the configured backend and wraps it in an Archiver.
func NewFromConfig(cfg config.ColdStorageConfig, recorder Recorder, logger *zap.Logger) (*Archiver, error) {
	switch cfg.Type {
	case "localfs", "":
		fs, err := NewLocalFS(cfg.Path)
		if err != nil {
			return nil, err
		}
		return NewArchiver(fs, "localfs", recorder, logger), nil
	case "s3":
		s3store, err := NewS3(S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return NewArchiver(s3store, "s3", recorder, logger), nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown cold storage type: %s", cfg.Type))
	}
}

// PayloadPath is the canonical archive location for a payload.
func PayloadPath(p *core.AnalysisPayload) string {
	return fmt.Sprintf("analyses/%s/%s/%s.json",
		strings.ToUpper(p.Ticker), p.GeneratedAt.UTC().Format("2006/01"), p.ID)
}

// Archive writes one payload and returns its path.
func (a *Archiver) Archive(ctx context.Context, p *core.AnalysisPayload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		a.record("failed")
		return "", core.WrapError(core.ErrStorageFailed, err)
	}

	path := PayloadPath(p)
	if err := a.storage.Write(ctx, path, data); err != nil {
		a.record("failed")
		if a.logger != nil {
			a.logger.Error("archive write failed",
				zap.String("ticker", p.Ticker),
				zap.String("path", path),
				zap.Error(err))
		}
		return "", core.WrapError(core.ErrStorageFailed, err)
	}

	a.record("success")
	if a.logger != nil {
		a.logger.Debug("payload archived",
			zap.String("ticker", p.Ticker),
			zap.String("path", path),
			zap.Int("bytes", len(data)))
	}
	return path, nil
}

// Load reads one archived payload back.
func (a *Archiver) Load(ctx context.Context, path string) (*core.AnalysisPayload, error) {
	data, err := a.storage.Read(ctx, path)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	var p core.AnalysisPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return &p, nil
}

// History lists archive paths for a ticker, oldest first.
func (a *Archiver) History(ctx context.Context, ticker string) ([]string, error) {
	return a.storage.List(ctx, "analyses/"+strings.ToUpper(ticker))
}

func (a *Archiver) record(status string) {
	if a.recorder != nil {
		a.recorder.RecordArchive(a.backend, status)
	}
}
