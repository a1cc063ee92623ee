package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/and161185/exmail-sync/internal/convert"
	"github.com/and161185/exmail-sync/internal/errs"
	"github.com/and161185/exmail-sync/internal/model"
	"github.com/and161185/exmail-sync/internal/repository"
)

// DepartmentWalker discovers the department tree two listing levels below ROOT.
type DepartmentWalker struct {
	api  DirectoryAPI
	repo repository.DepartmentRepository
	log  *zap.Logger
}

// NewDepartmentWalker constructs a walker. repo may be nil when only FullList is used.
func NewDepartmentWalker(api DirectoryAPI, repo repository.DepartmentRepository, log *zap.Logger) *DepartmentWalker {
	if log == nil {
		log = zap.NewNop()
	}
	return &DepartmentWalker{api: api, repo: repo, log: log}
}

// FullList returns ROOT, its children and its grandchildren keyed by id.
// A failed listing is logged and treated as an empty child set, except for
// authentication failures and cancellation, which abort the walk.
func (w *DepartmentWalker) FullList(ctx context.Context) (map[int64]model.Department, error) {
	root := model.RootDepartment()
	level1, err := w.children(ctx, root.ID)
	if err != nil {
		return nil, err
	}
	root.HasChild = len(level1) > 0

	out := map[int64]model.Department{root.ID: root}
	for _, d := range level1 {
		level2, err := w.children(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		d.HasChild = len(level2) > 0
		out[d.ID] = d
		for _, c := range level2 {
			out[c.ID] = c
		}
	}
	return out, nil
}

// Sync walks the tree and replaces the stored snapshot with it.
func (w *DepartmentWalker) Sync(ctx context.Context) (int, error) {
	if w.repo == nil {
		return 0, errors.New("department repository is not configured")
	}
	tree, err := w.FullList(ctx)
	if err != nil {
		return 0, err
	}
	depts := make([]model.Department, 0, len(tree))
	for _, d := range tree {
		depts = append(depts, d)
	}
	if err := w.repo.ReplaceAll(ctx, depts); err != nil {
		return 0, err
	}
	w.log.Info("departments synced", zap.Int("count", len(depts)))
	return len(depts), nil
}

// children lists the direct children of id, skipping the node itself and
// records that cannot be parsed.
func (w *DepartmentWalker) children(ctx context.Context, id int64) ([]model.Department, error) {
	recs, err := w.api.ListDepartments(ctx, id)
	if err != nil {
		if aborts(ctx, err) {
			return nil, err
		}
		w.log.Error("list departments failed", append(remoteFields(err), zap.Int64("department", id))...)
		return nil, nil
	}
	out := make([]model.Department, 0, len(recs))
	for _, rec := range recs {
		d, err := convert.Department(rec)
		if err != nil {
			w.log.Warn("skip department record", zap.Int64("parent", id), zap.Error(err))
			continue
		}
		if d.ID == id {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// aborts reports whether err must stop the enclosing sync instead of being
// isolated to one unit of work.
func aborts(ctx context.Context, err error) bool {
	return errors.Is(err, errs.ErrAuth) || ctx.Err() != nil
}

// remoteFields describes err with the provider's code and message when it has them.
func remoteFields(err error) []zap.Field {
	var re *errs.RemoteError
	if errors.As(err, &re) {
		return []zap.Field{zap.Int("code", re.Code), zap.String("errmsg", re.Msg), zap.Error(err)}
	}
	return []zap.Field{zap.Error(err)}
}
