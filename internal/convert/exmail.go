// Package convert turns provider payloads into domain values.
package convert

import (
	"strconv"
	"strings"
	"time"

	"github.com/and161185/exmail-sync/internal/errs"
	"github.com/and161185/exmail-sync/internal/exmail"
	"github.com/and161185/exmail-sync/internal/model"
)

// --- helpers ---

func missing(entity, field string) error {
	return &errs.ParseError{Entity: entity, Field: field, Reason: "missing"}
}

// epoch converts provider epoch seconds into an absolute timestamp.
func epoch(entity string, sec *int64) (time.Time, error) {
	if sec == nil {
		return time.Time{}, missing(entity, "time")
	}
	if *sec <= 0 {
		return time.Time{}, &errs.ParseError{Entity: entity, Field: "time", Reason: "non-positive epoch " + strconv.FormatInt(*sec, 10)}
	}
	return time.Unix(*sec, 0).UTC(), nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// --- Department ---

// Department parses one department/list entry.
func Department(in exmail.DepartmentRecord) (model.Department, error) {
	if in.ID == nil {
		return model.Department{}, missing("department", "id")
	}
	if in.Name == nil {
		return model.Department{}, missing("department", "name")
	}
	d := model.Department{ID: *in.ID, Name: *in.Name, Order: in.Order}
	if in.ParentID != nil {
		p := *in.ParentID
		d.ParentID = &p
	}
	return d, nil
}

// --- Mailbox ---

// Mailbox turns one user/simplelist entry into a directory row stamped with now.
func Mailbox(in exmail.MemberRecord, now time.Time) (model.Mailbox, error) {
	if in.UserID == nil || strings.TrimSpace(*in.UserID) == "" {
		return model.Mailbox{}, missing("member", "userid")
	}
	return model.Mailbox{
		Address:            *in.UserID,
		DepartmentID:       joinIDs(in.Department),
		Alias:              strings.Join(in.Slaves, ","),
		NeedsPasswordReset: in.CpwdLogin != 0,
		Enabled:            in.Enable != 0,
		Updated:            now,
	}, nil
}

// --- Logs ---

// LoginLog parses one log/login entry of mailbox address.
func LoginLog(address string, in exmail.LoginRecord) (model.LoginLogEntry, error) {
	ts, err := epoch("login_log", in.Time)
	if err != nil {
		return model.LoginLogEntry{}, err
	}
	return model.LoginLogEntry{
		Time:    ts,
		Address: address,
		Type:    model.LoginTypeFromCode(in.Type),
		IP:      in.IP,
	}, nil
}

// MailLog parses one log/mail entry.
func MailLog(in exmail.MailRecord) (model.MailLogEntry, error) {
	ts, err := epoch("mail_log", in.Time)
	if err != nil {
		return model.MailLogEntry{}, err
	}
	return model.MailLogEntry{
		Time:     ts,
		Sender:   in.Sender,
		Receiver: in.Receiver,
		Subject:  in.Subject,
		Type:     model.MailTypeFromCode(in.MailType),
		Status:   model.MailStatusFromCode(in.Status),
	}, nil
}

// OpLog parses one log/operation entry.
func OpLog(in exmail.OpRecord) (model.OpLogEntry, error) {
	ts, err := epoch("op_log", in.Time)
	if err != nil {
		return model.OpLogEntry{}, err
	}
	return model.OpLogEntry{
		Time:     ts,
		Operator: in.Operator,
		Type:     model.OpTypeFromCode(in.Type),
		Operand:  in.Operand,
	}, nil
}
