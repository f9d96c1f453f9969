package inventorysync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"inventory-sync/core/reconcile"
	"inventory-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrReportNotFound is returned for an unknown run ID.
var ErrReportNotFound = errors.New("report not found")

// ReportInfo describes one archived report.
type ReportInfo struct {
	ID       string    `json:"id"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Archive stores run reports as JSON objects under <prefix>/<run-id>.json.
type Archive struct {
	client storage.Client
	bucket string
	prefix string
	retain int
	logger *zap.Logger
}

// NewArchive creates an archive over client using the bucket, prefix and retention of cfg.
func NewArchive(client storage.Client, cfg storage.Config, logger *zap.Logger) *Archive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		retain: cfg.RetainReports,
		logger: logger,
	}
}

func (a *Archive) objectName(id string) string {
	return path.Join(a.prefix, id+".json")
}

func (a *Archive) listPrefix() string {
	if a.prefix == "" {
		return ""
	}
	return a.prefix + "/"
}

// Save writes the report and prunes reports beyond the retention limit.
func (a *Archive) Save(ctx context.Context, report *reconcile.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = a.client.PutObject(
		ctx,
		a.bucket,
		a.objectName(report.ID),
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("failed to write report %s: %w", report.ID, err)
	}

	if err := a.prune(ctx); err != nil {
		a.logger.Warn("Failed to prune archived reports", zap.Error(err))
	}
	return nil
}

// Load reads an archived report.
func (a *Archive) Load(ctx context.Context, id string) (*reconcile.Report, error) {
	if id == "" || strings.ContainsAny(id, "/\\") {
		return nil, ErrReportNotFound
	}

	reader, err := a.client.GetObject(ctx, a.bucket, a.objectName(id), minio.GetObjectOptions{})
	if err != nil {
		return nil, a.readError(id, err)
	}
	defer reader.Close()

	// minio defers the request until the first read.
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, a.readError(id, err)
	}

	var report reconcile.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", id, err)
	}
	return &report, nil
}

func (a *Archive) readError(id string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrReportNotFound
	}
	return fmt.Errorf("failed to read report %s: %w", id, err)
}

// List returns the archived reports, newest first.
func (a *Archive) List(ctx context.Context) ([]ReportInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var infos []ReportInfo
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: a.listPrefix(), Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		name := path.Base(obj.Key)
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		infos = append(infos, ReportInfo{
			ID:       strings.TrimSuffix(name, ".json"),
			Size:     obj.Size,
			Modified: obj.LastModified,
		})
	}

	slices.SortFunc(infos, func(x, y ReportInfo) int {
		if c := y.Modified.Compare(x.Modified); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})
	return infos, nil
}

// prune removes the oldest reports beyond the retention limit. Zero keeps everything.
func (a *Archive) prune(ctx context.Context) error {
	if a.retain <= 0 {
		return nil
	}
	infos, err := a.List(ctx)
	if err != nil {
		return err
	}
	if len(infos) <= a.retain {
		return nil
	}

	var errs []error
	for _, info := range infos[a.retain:] {
		if err := a.client.RemoveObject(ctx, a.bucket, a.objectName(info.ID), minio.RemoveObjectOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", info.ID, err))
		}
	}
	a.logger.Debug("Pruned archived reports", zap.Int("removed", len(infos)-a.retain-len(errs)))
	return errors.Join(errs...)
}
