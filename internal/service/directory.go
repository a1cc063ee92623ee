package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/exmail-sync/internal/convert"
	"github.com/and161185/exmail-sync/internal/errs"
	"github.com/and161185/exmail-sync/internal/model"
	"github.com/and161185/exmail-sync/internal/repository"
)

// DirectorySync copies department rosters into the mailbox table.
type DirectorySync struct {
	api  DirectoryAPI
	repo repository.MailboxRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewDirectorySync constructs a DirectorySync.
func NewDirectorySync(api DirectoryAPI, repo repository.MailboxRepository, log *zap.Logger) *DirectorySync {
	if log == nil {
		log = zap.NewNop()
	}
	return &DirectorySync{api: api, repo: repo, log: log, now: time.Now}
}

// SyncMailboxes fetches the members of dept (and of its descendants when
// fetchChild is set) and upserts them in one transaction. It returns the
// number of affected rows. Members that fail to parse are logged and skipped.
// A remote errcode on the listing yields an empty roster: it is logged and
// nothing is written. Auth failures and transport errors are returned.
func (s *DirectorySync) SyncMailboxes(ctx context.Context, dept int64, fetchChild bool) (int, error) {
	log := s.log.With(zap.String("run_id", uuid.Must(uuid.NewV4()).String()), zap.Int64("department", dept))

	members, err := s.api.ListMembers(ctx, dept, fetchChild)
	if err != nil {
		log.Error("list members failed", remoteFields(err)...)
		if errors.Is(err, errs.ErrRemoteAPI) && !aborts(ctx, err) {
			return 0, nil
		}
		return 0, err
	}
	log.Info("fetched members", zap.Int("count", len(members)), zap.Bool("fetch_child", fetchChild))

	now := s.now().UTC()
	boxes := make([]model.Mailbox, 0, len(members))
	for _, m := range members {
		box, err := convert.Mailbox(m, now)
		if err != nil {
			log.Warn("skip member record", zap.Error(err))
			continue
		}
		boxes = append(boxes, box)
	}

	n, err := s.repo.UpsertBatch(ctx, boxes)
	if err != nil {
		return 0, err
	}
	log.Info("mailboxes synced", zap.Int("rows", n))
	return n, nil
}
