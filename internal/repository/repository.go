// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/exmail-sync/internal/model"
)

// MailboxRepository stores the mailbox directory.
type MailboxRepository interface {
	// UpsertBatch inserts or fully replaces rows keyed by address in one transaction.
	UpsertBatch(ctx context.Context, boxes []model.Mailbox) (int, error)
	// ListAddresses returns every known mailbox address.
	ListAddresses(ctx context.Context) ([]string, error)
}

// DepartmentRepository stores the department tree snapshot.
type DepartmentRepository interface {
	// ReplaceAll swaps the stored tree for depts in one transaction.
	ReplaceAll(ctx context.Context, depts []model.Department) error
	// Get loads a department by id.
	Get(ctx context.Context, id int64) (*model.Department, error)
}

// LogRepository stores activity logs. Each call is one transaction; rows that hit
// a natural-key conflict overwrite the stored non-key columns.
type LogRepository interface {
	UpsertLoginLogs(ctx context.Context, logs []model.LoginLogEntry) (int, error)
	UpsertMailLogs(ctx context.Context, logs []model.MailLogEntry) (int, error)
	UpsertOpLogs(ctx context.Context, logs []model.OpLogEntry) (int, error)
}
