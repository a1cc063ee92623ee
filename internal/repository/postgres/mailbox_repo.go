package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/exmail-sync/internal/model"
)

// MailboxRepo implements MailboxRepository using PostgreSQL.
type MailboxRepo struct{ db *DB }

// NewMailboxRepo constructs a mailbox repository.
func NewMailboxRepo(db *DB) *MailboxRepo { return &MailboxRepo{db: db} }

// UpsertBatch inserts rows; an existing address gets every other column replaced.
func (r *MailboxRepo) UpsertBatch(ctx context.Context, boxes []model.Mailbox) (int, error) {
	if len(boxes) == 0 {
		return 0, nil
	}
	const q = `
INSERT INTO mail_box (address, department_id, alias, need_reset_password, enabled, updated)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (address) DO UPDATE SET
  department_id = EXCLUDED.department_id,
  alias = EXCLUDED.alias,
  need_reset_password = EXCLUDED.need_reset_password,
  enabled = EXCLUDED.enabled,
  updated = EXCLUDED.updated`

	var n int
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		for _, b := range boxes {
			tag, err := tx.Exec(ctx, q, b.Address, b.DepartmentID, b.Alias, b.NeedsPasswordReset, b.Enabled, b.Updated)
			if err != nil {
				return err
			}
			n += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ListAddresses returns all mailbox addresses.
func (r *MailboxRepo) ListAddresses(ctx context.Context) ([]string, error) {
	const q = `SELECT address FROM mail_box ORDER BY address`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err = rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
