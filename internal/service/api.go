// Package service implements the sync operations on top of the provider client
// and the repositories.
package service

import (
	"context"
	"time"

	"github.com/and161185/exmail-sync/internal/exmail"
	"github.com/and161185/exmail-sync/internal/model"
)

// DirectoryAPI is the part of the provider client that reads and edits the directory.
type DirectoryAPI interface {
	ListDepartments(ctx context.Context, id int64) ([]exmail.DepartmentRecord, error)
	ListMembers(ctx context.Context, departmentID int64, fetchChild bool) ([]exmail.MemberRecord, error)
	UpdateMember(ctx context.Context, userID string, fields map[string]any) error
}

// LogAPI is the part of the provider client that reads activity logs.
type LogAPI interface {
	LoginLog(ctx context.Context, address string, from, to time.Time) ([]exmail.LoginRecord, error)
	MailLog(ctx context.Context, address string, from, to time.Time, mailType model.MailType) ([]exmail.MailRecord, error)
	OpLog(ctx context.Context, from, to time.Time, kind model.OpQueryType) ([]exmail.OpRecord, error)
}

var (
	_ DirectoryAPI = (*exmail.Client)(nil)
	_ LogAPI       = (*exmail.Client)(nil)
)
