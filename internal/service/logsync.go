package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/and161185/exmail-sync/internal/convert"
	"github.com/and161185/exmail-sync/internal/errs"
	"github.com/and161185/exmail-sync/internal/model"
	"github.com/and161185/exmail-sync/internal/repository"
)

// DefaultParallel is used when a non-positive parallelism is configured.
const DefaultParallel = 8

// SyncStats summarizes one log sync run.
type SyncStats struct {
	// Mailboxes is the roster size; zero for the corp-wide operation log.
	Mailboxes int
	// Failed counts fetch tasks whose result was dropped.
	Failed int
	// Records is the number of entries handed to the repository.
	Records int
	// Stored is the number of rows inserted or updated.
	Stored int
}

// LogSync fans log fetches out over a bounded pool and persists every
// collected record in one transaction after all fetches have finished.
type LogSync struct {
	api      LogAPI
	boxes    repository.MailboxRepository
	logs     repository.LogRepository
	parallel int
	log      *zap.Logger
}

// NewLogSync constructs a LogSync.
func NewLogSync(
	api LogAPI, boxes repository.MailboxRepository, logs repository.LogRepository, parallel int, log *zap.Logger,
) *LogSync {
	if parallel <= 0 {
		parallel = DefaultParallel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSync{api: api, boxes: boxes, logs: logs, parallel: parallel, log: log}
}

// SyncLogs fetches one category of logs for [from, to] and stores them.
// A failing mailbox is logged and contributes nothing; authentication and
// persistence failures abort the run.
func (s *LogSync) SyncLogs(ctx context.Context, category model.LogCategory, from, to time.Time) (SyncStats, error) {
	log := s.log.With(
		zap.String("run_id", uuid.Must(uuid.NewV4()).String()),
		zap.String("category", string(category)),
		zap.String("from", from.Format(time.DateOnly)),
		zap.String("to", to.Format(time.DateOnly)),
	)

	var (
		stats SyncStats
		err   error
	)
	switch category {
	case model.CategoryLogin:
		stats, err = perMailbox(ctx, s, log, func(ctx context.Context, l *zap.Logger, address string) ([]model.LoginLogEntry, error) {
			return s.fetchLogin(ctx, l, address, from, to)
		}, s.logs.UpsertLoginLogs)
	case model.CategoryMail:
		stats, err = perMailbox(ctx, s, log, func(ctx context.Context, l *zap.Logger, address string) ([]model.MailLogEntry, error) {
			return s.fetchMail(ctx, l, address, from, to)
		}, s.logs.UpsertMailLogs)
	case model.CategoryOperation:
		stats, err = runTasks(ctx, log, s.parallel, []string{""}, func(ctx context.Context, l *zap.Logger, _ string) ([]model.OpLogEntry, error) {
			return s.fetchOp(ctx, l, from, to)
		}, s.logs.UpsertOpLogs)
	default:
		return SyncStats{}, fmt.Errorf("unknown log category %q", category)
	}
	if err != nil {
		log.Error("log sync aborted", zap.Error(err))
		return stats, err
	}
	log.Info("log sync finished",
		zap.Int("mailboxes", stats.Mailboxes),
		zap.Int("failed", stats.Failed),
		zap.Int("records", stats.Records),
		zap.Int("stored", stats.Stored),
	)
	return stats, nil
}

// perMailbox reads the roster and dispatches one task per address.
func perMailbox[T any](
	ctx context.Context, s *LogSync, log *zap.Logger,
	fetch func(context.Context, *zap.Logger, string) ([]T, error),
	store func(context.Context, []T) (int, error),
) (SyncStats, error) {
	roster, err := s.boxes.ListAddresses(ctx)
	if err != nil {
		return SyncStats{}, fmt.Errorf("%w: read mailbox roster: %w", errs.ErrPersistence, err)
	}
	if len(roster) == 0 {
		log.Warn("mailbox roster is empty, run the user sync first")
	}
	log.Info("fetching logs", zap.Int("mailboxes", len(roster)), zap.Int("parallel", s.parallel))

	stats, err := runTasks(ctx, log, s.parallel, roster, fetch, store)
	stats.Mailboxes = len(roster)
	return stats, err
}

// runTasks is the fan-out/barrier/commit core shared by every category.
// Results land in a slice indexed by task so workers never share a buffer.
func runTasks[T any](
	ctx context.Context, log *zap.Logger, parallel int, addresses []string,
	fetch func(context.Context, *zap.Logger, string) ([]T, error),
	store func(context.Context, []T) (int, error),
) (SyncStats, error) {
	results := make([][]T, len(addresses))
	failed := make([]bool, len(addresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, address := range addresses {
		// a fatal error from an earlier task stops the dispatch
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l := log
			if address != "" {
				l = log.With(zap.String("mailbox", address))
			}
			recs, err := isolate(gctx, l, address, fetch)
			if err != nil {
				return err
			}
			if recs == nil {
				failed[i] = true
				return nil
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SyncStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return SyncStats{}, err
	}

	var stats SyncStats
	var batch []T
	for i := range results {
		if failed[i] {
			stats.Failed++
			continue
		}
		batch = append(batch, results[i]...)
	}
	stats.Records = len(batch)

	stored, err := store(ctx, batch)
	if err != nil {
		return stats, err
	}
	stats.Stored = stored
	return stats, nil
}

// isolate runs one fetch. Remote, transport and parse failures and panics are
// logged and reported as a nil result; authentication failures and
// cancellation are returned so that the whole run stops.
func isolate[T any](
	ctx context.Context, log *zap.Logger, address string,
	fetch func(context.Context, *zap.Logger, string) ([]T, error),
) (recs []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("log fetch panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			recs, err = nil, nil
		}
	}()

	recs, err = fetch(ctx, log, address)
	if err != nil {
		if errors.Is(err, errs.ErrAuth) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Error("log fetch failed", remoteFields(err)...)
		return nil, nil
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}

func (s *LogSync) fetchLogin(
	ctx context.Context, log *zap.Logger, address string, from, to time.Time,
) ([]model.LoginLogEntry, error) {
	recs, err := s.api.LoginLog(ctx, address, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]model.LoginLogEntry, 0, len(recs))
	for _, r := range recs {
		e, err := convert.LoginLog(address, r)
		if err != nil {
			log.Warn("skip login record", zap.Error(err))
			continue
		}
		out = append(out, e)
	}
	log.Debug("fetched login log", zap.Int("records", len(out)))
	return out, nil
}

func (s *LogSync) fetchMail(
	ctx context.Context, log *zap.Logger, address string, from, to time.Time,
) ([]model.MailLogEntry, error) {
	recs, err := s.api.MailLog(ctx, address, from, to, model.MailAll)
	if err != nil {
		return nil, err
	}
	out := make([]model.MailLogEntry, 0, len(recs))
	for _, r := range recs {
		e, err := convert.MailLog(r)
		if err != nil {
			log.Warn("skip mail record", zap.Error(err))
			continue
		}
		out = append(out, e)
	}
	log.Debug("fetched mail log", zap.Int("records", len(out)))
	return out, nil
}

func (s *LogSync) fetchOp(ctx context.Context, log *zap.Logger, from, to time.Time) ([]model.OpLogEntry, error) {
	recs, err := s.api.OpLog(ctx, from, to, model.OpQueryAll)
	if err != nil {
		return nil, err
	}
	out := make([]model.OpLogEntry, 0, len(recs))
	for _, r := range recs {
		e, err := convert.OpLog(r)
		if err != nil {
			log.Warn("skip operation record", zap.Error(err))
			continue
		}
		out = append(out, e)
	}
	log.Debug("fetched operation log", zap.Int("records", len(out)))
	return out, nil
}
