package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/exmail-sync/internal/errs"
	"github.com/and161185/exmail-sync/internal/model"
)

// DepartmentRepo implements DepartmentRepository using PostgreSQL.
type DepartmentRepo struct{ db *DB }

// NewDepartmentRepo constructs a department repository.
func NewDepartmentRepo(db *DB) *DepartmentRepo { return &DepartmentRepo{db: db} }

// ReplaceAll deletes the stored tree and inserts depts.
func (r *DepartmentRepo) ReplaceAll(ctx context.Context, depts []model.Department) error {
	const del = `DELETE FROM department`
	const ins = `INSERT INTO department (id, name, parent_id, sort_order, has_child) VALUES ($1,$2,$3,$4,$5)`

	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, del); err != nil {
			return err
		}
		for _, d := range depts {
			if _, err := tx.Exec(ctx, ins, d.ID, d.Name, d.ParentID, d.Order, d.HasChild); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get selects a department by id.
func (r *DepartmentRepo) Get(ctx context.Context, id int64) (*model.Department, error) {
	const q = `SELECT id, name, parent_id, sort_order, has_child FROM department WHERE id=$1`
	var d model.Department
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&d.ID, &d.Name, &d.ParentID, &d.Order, &d.HasChild)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
