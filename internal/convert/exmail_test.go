package convert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/exmail-sync/internal/errs"
	"github.com/and161185/exmail-sync/internal/exmail"
	"github.com/and161185/exmail-sync/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestDepartment(t *testing.T) {
	t.Parallel()

	d, err := Department(exmail.DepartmentRecord{ID: ptr(int64(7)), Name: ptr("Ops"), ParentID: ptr(int64(2)), Order: 3})
	require.NoError(t, err)
	require.Equal(t, int64(7), d.ID)
	require.Equal(t, "Ops", d.Name)
	require.Equal(t, int64(2), *d.ParentID)
	require.Equal(t, int64(3), d.Order)
	require.False(t, d.HasChild)

	_, err = Department(exmail.DepartmentRecord{Name: ptr("x")})
	require.ErrorIs(t, err, errs.ErrParse)
	_, err = Department(exmail.DepartmentRecord{ID: ptr(int64(1))})
	require.ErrorIs(t, err, errs.ErrParse)
}

func TestMailbox_Transform(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	m, err := Mailbox(exmail.MemberRecord{
		UserID:     ptr("a@x.com"),
		Department: []int64{2, 5},
		Slaves:     []string{"alt@x.com"},
		CpwdLogin:  1,
		Enable:     1,
	}, now)
	require.NoError(t, err)
	require.Equal(t, model.Mailbox{
		Address:            "a@x.com",
		DepartmentID:       "2,5",
		Alias:              "alt@x.com",
		NeedsPasswordReset: true,
		Enabled:            true,
		Updated:            now,
	}, m)
}

func TestMailbox_EmptyListsAndFlags(t *testing.T) {
	t.Parallel()

	m, err := Mailbox(exmail.MemberRecord{UserID: ptr("b@x.com")}, time.Now())
	require.NoError(t, err)
	require.Equal(t, "", m.DepartmentID)
	require.Equal(t, "", m.Alias)
	require.False(t, m.NeedsPasswordReset)
	require.False(t, m.Enabled)

	m, err = Mailbox(exmail.MemberRecord{
		UserID: ptr("c@x.com"), Slaves: []string{"c1@x.com", "c2@x.com"}, Department: []int64{9},
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, "c1@x.com,c2@x.com", m.Alias)
	require.Equal(t, "9", m.DepartmentID)
}

func TestMailbox_MissingUserID(t *testing.T) {
	t.Parallel()
	_, err := Mailbox(exmail.MemberRecord{}, time.Now())
	require.ErrorIs(t, err, errs.ErrParse)
	_, err = Mailbox(exmail.MemberRecord{UserID: ptr("  ")}, time.Now())
	require.ErrorIs(t, err, errs.ErrParse)
}

func TestLoginLog(t *testing.T) {
	t.Parallel()

	e, err := LoginLog("a@x.com", exmail.LoginRecord{Time: ptr(int64(1709280000)), Type: 3, IP: "10.0.0.1"})
	require.NoError(t, err)
	require.Equal(t, time.Unix(1709280000, 0).UTC(), e.Time)
	require.Equal(t, "a@x.com", e.Address)
	require.Equal(t, model.LoginApp, e.Type)
	require.Equal(t, "10.0.0.1", e.IP)

	e, err = LoginLog("a@x.com", exmail.LoginRecord{Time: ptr(int64(1)), Type: 77})
	require.NoError(t, err)
	require.Equal(t, model.LoginUnknown, e.Type)

	_, err = LoginLog("a@x.com", exmail.LoginRecord{Type: 1})
	require.ErrorIs(t, err, errs.ErrParse)
	_, err = LoginLog("a@x.com", exmail.LoginRecord{Time: ptr(int64(0))})
	require.ErrorIs(t, err, errs.ErrParse)
}

func TestMailLog(t *testing.T) {
	t.Parallel()

	e, err := MailLog(exmail.MailRecord{
		Time: ptr(int64(1709280000)), Sender: "a@x.com", Receiver: "b@y.com",
		Subject: "hello", Status: 13, MailType: 2,
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusRecvSuccess, e.Status)
	require.Equal(t, model.MailReceive, e.Type)
	require.Equal(t, "hello", e.Subject)

	_, err = MailLog(exmail.MailRecord{Sender: "a"})
	require.ErrorIs(t, err, errs.ErrParse)
}

func TestOpLog(t *testing.T) {
	t.Parallel()

	e, err := OpLog(exmail.OpRecord{Time: ptr(int64(1709280000)), Operator: "admin@x.com", Type: 24, Operand: "a@x.com"})
	require.NoError(t, err)
	require.Equal(t, model.OpEditUserAlias, e.Type)
	require.Equal(t, "admin@x.com", e.Operator)

	e, err = OpLog(exmail.OpRecord{Time: ptr(int64(1709280000)), Type: 500})
	require.NoError(t, err)
	require.Equal(t, model.OpUnknown, e.Type)
}
