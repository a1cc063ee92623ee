// Package model defines domain entities used by services and repositories.
package model

import "time"

// RootDepartmentID is the id of the synthetic top of the department tree.
const RootDepartmentID int64 = 1

// Department is a node of the organization tree.
type Department struct {
	ID       int64
	Name     string
	ParentID *int64 // nil for ROOT
	Order    int64
	HasChild bool // true iff a child listing for this node returned at least one entry
}

// RootDepartment returns the synthetic ROOT node.
func RootDepartment() Department {
	return Department{ID: RootDepartmentID, Name: "ROOT", Order: 1}
}

// Mailbox is one row of the mailbox directory.
type Mailbox struct {
	Address            string // PK
	DepartmentID       string // comma-joined department ids
	Alias              string // comma-joined secondary addresses
	NeedsPasswordReset bool
	Enabled            bool
	Updated            time.Time
}

// LoginLogEntry is a single login event. Unique by (Time, Address, Type, IP).
type LoginLogEntry struct {
	Time    time.Time
	Address string
	Type    LoginType
	IP      string
}

// MailLogEntry is a single send/receive event. Unique by (Time, Sender, Receiver, Subject, Type).
type MailLogEntry struct {
	Time     time.Time
	Sender   string
	Receiver string
	Subject  string
	Type     MailType
	Status   MailStatus
}

// OpLogEntry is a single administrative action. Unique by (Time, Operator, Type, Operand).
type OpLogEntry struct {
	Time     time.Time
	Operator string
	Type     OpType
	Operand  string
}

// LogCategory selects which activity log a sync run covers.
type LogCategory string

// Supported log categories.
const (
	CategoryLogin     LogCategory = "login"
	CategoryMail      LogCategory = "mail"
	CategoryOperation LogCategory = "operation"
)
