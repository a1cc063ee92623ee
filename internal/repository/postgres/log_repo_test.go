package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/exmail-sync/internal/errs"
	"github.com/and161185/exmail-sync/internal/model"
)

var ts = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func TestLogRepo_UpsertLoginLogs_Idempotent(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewLogRepo(db)

	entry := model.LoginLogEntry{Time: ts, Address: "a@x.com", Type: model.LoginApp, IP: "10.0.0.1"}

	// first run inserts, second run hits the unique key and stores nothing new
	for _, affected := range []int64{1, 0} {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO login_log \(time, address, type, ip\).*ON CONFLICT \(time, address, type, ip\) DO NOTHING`).
			WithArgs(ts, "a@x.com", "APP", "10.0.0.1").
			WillReturnResult(pgxmock.NewResult("INSERT", affected))
		mock.ExpectCommit()
	}

	n, err := r.UpsertLoginLogs(context.Background(), []model.LoginLogEntry{entry})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = r.UpsertLoginLogs(context.Background(), []model.LoginLogEntry{entry})
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogRepo_UpsertMailLogs(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO mail_log \(time, sender, receiver, subject, type, status\).*ON CONFLICT \(time, sender, receiver, md5\(subject\), type\) DO UPDATE SET`).
		WithArgs(ts, "a@x.com", "b@y.com", "hello", "RECEIVE", "RECV_SUCCESS").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := NewLogRepo(db).UpsertMailLogs(context.Background(), []model.MailLogEntry{{
		Time: ts, Sender: "a@x.com", Receiver: "b@y.com", Subject: "hello",
		Type: model.MailReceive, Status: model.StatusRecvSuccess,
	}})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogRepo_UpsertOpLogs(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO op_log \(time, operator, type, operand\)`).
		WithArgs(ts, "admin@x.com", "ADD_USER", "new@x.com").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO op_log`).
		WithArgs(ts, "admin@x.com", "UNKNOWN", "x").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := NewLogRepo(db).UpsertOpLogs(context.Background(), []model.OpLogEntry{
		{Time: ts, Operator: "admin@x.com", Type: model.OpAddUser, Operand: "new@x.com"},
		{Time: ts, Operator: "admin@x.com", Type: model.OpUnknown, Operand: "x"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogRepo_FailureRollsBackWholeBatch(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO login_log`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO login_log`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("conn reset"))
	mock.ExpectRollback()

	n, err := NewLogRepo(db).UpsertLoginLogs(context.Background(), []model.LoginLogEntry{
		{Time: ts, Address: "a@x.com"}, {Time: ts, Address: "b@x.com"},
	})
	require.ErrorIs(t, err, errs.ErrPersistence)
	require.Equal(t, 0, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogRepo_Empty_NoTx(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewLogRepo(db)

	n, err := r.UpsertMailLogs(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	n, err = r.UpsertOpLogs(context.Background(), []model.OpLogEntry{})
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
