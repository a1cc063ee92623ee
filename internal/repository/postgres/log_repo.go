package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/exmail-sync/internal/model"
)

// LogRepo implements LogRepository using PostgreSQL.
// Login and operation rows consist of key columns only, so a conflict is a no-op;
// mail rows refresh their status.
type LogRepo struct{ db *DB }

// NewLogRepo constructs a log repository.
func NewLogRepo(db *DB) *LogRepo { return &LogRepo{db: db} }

const insLoginLog = `
INSERT INTO login_log (time, address, type, ip)
VALUES ($1,$2,$3,$4)
ON CONFLICT (time, address, type, ip) DO NOTHING`

const insMailLog = `
INSERT INTO mail_log (time, sender, receiver, subject, type, status)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (time, sender, receiver, md5(subject), type) DO UPDATE SET
  subject = EXCLUDED.subject,
  status = EXCLUDED.status`

const insOpLog = `
INSERT INTO op_log (time, operator, type, operand)
VALUES ($1,$2,$3,$4)
ON CONFLICT (time, operator, type, operand) DO NOTHING`

// UpsertLoginLogs stores login events and returns the number of new rows.
func (r *LogRepo) UpsertLoginLogs(ctx context.Context, logs []model.LoginLogEntry) (int, error) {
	return upsertEach(ctx, r.db, logs, func(tx pgx.Tx, l model.LoginLogEntry) (int64, error) {
		tag, err := tx.Exec(ctx, insLoginLog, l.Time, l.Address, l.Type.String(), l.IP)
		return tag.RowsAffected(), err
	})
}

// UpsertMailLogs stores mail events and returns the number of inserted or updated rows.
func (r *LogRepo) UpsertMailLogs(ctx context.Context, logs []model.MailLogEntry) (int, error) {
	return upsertEach(ctx, r.db, logs, func(tx pgx.Tx, l model.MailLogEntry) (int64, error) {
		tag, err := tx.Exec(ctx, insMailLog, l.Time, l.Sender, l.Receiver, l.Subject, l.Type.String(), l.Status.String())
		return tag.RowsAffected(), err
	})
}

// UpsertOpLogs stores administrative actions and returns the number of new rows.
func (r *LogRepo) UpsertOpLogs(ctx context.Context, logs []model.OpLogEntry) (int, error) {
	return upsertEach(ctx, r.db, logs, func(tx pgx.Tx, l model.OpLogEntry) (int64, error) {
		tag, err := tx.Exec(ctx, insOpLog, l.Time, l.Operator, l.Type.String(), l.Operand)
		return tag.RowsAffected(), err
	})
}

// upsertEach executes one statement per record inside a single transaction.
func upsertEach[T any](ctx context.Context, db *DB, recs []T, exec func(pgx.Tx, T) (int64, error)) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	var n int64
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		for _, rec := range recs {
			affected, err := exec(tx, rec)
			if err != nil {
				return err
			}
			n += affected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
