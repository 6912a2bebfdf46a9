// Package storage provides the MinIO-backed snapshot archiver.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"salespulse_backend/internal/tasks/ports"
	"salespulse_backend/internal/tasks/synthesizer"
	"salespulse_backend/platform/config"
)

// MinIOArchiver stores AI scan snapshots (prompt plus raw provider
// response) as JSON objects in a MinIO bucket, one object per scan.
type MinIOArchiver struct {
	client *minio.Client
	bucket string
}

// NewMinIOArchiver creates the archiver and ensures its bucket exists.
func NewMinIOArchiver(ctx context.Context, cfg config.MinIOConfig) (*MinIOArchiver, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create MinIO client: %w", err)
	}

	archiver := &MinIOArchiver{
		client: client,
		bucket: cfg.GetMinioBucketScanSnapshots(),
	}
	if err := archiver.ensureBucketExists(ctx); err != nil {
		return nil, err
	}
	return archiver, nil
}

var _ ports.SnapshotArchiver = (*MinIOArchiver)(nil)

func (a *MinIOArchiver) ensureBucketExists(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", a.bucket, err)
		}
	}
	return nil
}

// Archive writes one scan's snapshot to <tenant>/<scan>.json.
func (a *MinIOArchiver) Archive(ctx context.Context, tenantID, scanID uuid.UUID, snapshot synthesizer.Snapshot) error {
	payload, err := json.Marshal(struct {
		synthesizer.Snapshot
		TenantID   uuid.UUID `json:"tenantId"`
		ScanID     uuid.UUID `json:"scanId"`
		ArchivedAt time.Time `json:"archivedAt"`
	}{
		Snapshot:   snapshot,
		TenantID:   tenantID,
		ScanID:     scanID,
		ArchivedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	objectName := fmt.Sprintf("%s/%s.json", tenantID, scanID)
	_, err = a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("put snapshot object: %w", err)
	}
	return nil
}
