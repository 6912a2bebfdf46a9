// Package ports declares the external collaborator interfaces of the tasks
// module, keeping the service layer free of infrastructure imports.
package ports

import (
	"context"

	"github.com/google/uuid"

	"salespulse_backend/internal/tasks/synthesizer"
)

// SnapshotArchiver stores the prompt and raw provider response of an AI
// scan for later audit. Archiving is best-effort; a failing archiver never
// fails the scan.
type SnapshotArchiver interface {
	Archive(ctx context.Context, tenantID, scanID uuid.UUID, snapshot synthesizer.Snapshot) error
}
