package service

import (
	"context"
	"sync"
	"time"

	"github.com/and161185/exmail-sync/internal/exmail"
	"github.com/and161185/exmail-sync/internal/model"
	"github.com/and161185/exmail-sync/internal/repository"
)

func i64(v int64) *int64    { return &v }
func str(v string) *string { return &v }

type fakeDirectoryAPI struct {
	mu sync.Mutex

	depts    map[int64][]exmail.DepartmentRecord
	deptErrs map[int64]error
	listed   []int64

	members      []exmail.MemberRecord
	membersErr   error
	membersDept  int64
	membersChild bool

	updateErrs map[string]error
	updates    map[string]map[string]any
}

var _ DirectoryAPI = (*fakeDirectoryAPI)(nil)

func (f *fakeDirectoryAPI) ListDepartments(_ context.Context, id int64) ([]exmail.DepartmentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, id)
	if err := f.deptErrs[id]; err != nil {
		return nil, err
	}
	return f.depts[id], nil
}

func (f *fakeDirectoryAPI) ListMembers(_ context.Context, departmentID int64, fetchChild bool) ([]exmail.MemberRecord, error) {
	f.membersDept, f.membersChild = departmentID, fetchChild
	return f.members, f.membersErr
}

func (f *fakeDirectoryAPI) UpdateMember(_ context.Context, userID string, fields map[string]any) error {
	if f.updates == nil {
		f.updates = map[string]map[string]any{}
	}
	if err := f.updateErrs[userID]; err != nil {
		return err
	}
	f.updates[userID] = fields
	return nil
}

type fakeLogAPI struct {
	mu sync.Mutex

	login    map[string][]exmail.LoginRecord
	mail     map[string][]exmail.MailRecord
	op       []exmail.OpRecord
	errs     map[string]error
	panics   map[string]bool
	delay    time.Duration
	calls    []string
	mailType model.MailType
	opCalls  int

	active, maxActive int
}

var _ LogAPI = (*fakeLogAPI)(nil)

func (f *fakeLogAPI) enter(address string) error {
	f.mu.Lock()
	f.calls = append(f.calls, address)
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	err := f.errs[address]
	boom := f.panics[address]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if boom {
		f.leave()
		panic("decoder exploded")
	}
	return err
}

func (f *fakeLogAPI) leave() {
	f.mu.Lock()
	f.active--
	f.mu.Unlock()
}

func (f *fakeLogAPI) LoginLog(_ context.Context, address string, _, _ time.Time) ([]exmail.LoginRecord, error) {
	if err := f.enter(address); err != nil {
		f.leave()
		return nil, err
	}
	defer f.leave()
	return f.login[address], nil
}

func (f *fakeLogAPI) MailLog(_ context.Context, address string, _, _ time.Time, mt model.MailType) ([]exmail.MailRecord, error) {
	f.mu.Lock()
	f.mailType = mt
	f.mu.Unlock()
	if err := f.enter(address); err != nil {
		f.leave()
		return nil, err
	}
	defer f.leave()
	return f.mail[address], nil
}

func (f *fakeLogAPI) OpLog(_ context.Context, _, _ time.Time, _ model.OpQueryType) ([]exmail.OpRecord, error) {
	f.mu.Lock()
	f.opCalls++
	f.mu.Unlock()
	return f.op, f.errs[""]
}

type fakeMailboxRepo struct {
	addresses []string
	listErr   error
	listCalls int

	upserted  []model.Mailbox
	upsertErr error
}

var _ repository.MailboxRepository = (*fakeMailboxRepo)(nil)

func (f *fakeMailboxRepo) UpsertBatch(_ context.Context, boxes []model.Mailbox) (int, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upserted = append([]model.Mailbox(nil), boxes...)
	return len(boxes), nil
}

func (f *fakeMailboxRepo) ListAddresses(context.Context) ([]string, error) {
	f.listCalls++
	return append([]string(nil), f.addresses...), f.listErr
}

type fakeDepartmentRepo struct {
	replaced   []model.Department
	replaceErr error
}

var _ repository.DepartmentRepository = (*fakeDepartmentRepo)(nil)

func (f *fakeDepartmentRepo) ReplaceAll(_ context.Context, depts []model.Department) error {
	f.replaced = append([]model.Department(nil), depts...)
	return f.replaceErr
}

func (f *fakeDepartmentRepo) Get(_ context.Context, id int64) (*model.Department, error) {
	for _, d := range f.replaced {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, nil
}

// fakeLogRepo stores like the real one: one row per natural key.
type fakeLogRepo struct {
	calls int
	err   error

	login map[model.LoginLogEntry]struct{}
	mail  []model.MailLogEntry
	op    []model.OpLogEntry
}

var _ repository.LogRepository = (*fakeLogRepo)(nil)

func (f *fakeLogRepo) UpsertLoginLogs(_ context.Context, logs []model.LoginLogEntry) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if f.login == nil {
		f.login = map[model.LoginLogEntry]struct{}{}
	}
	n := 0
	for _, l := range logs {
		if _, ok := f.login[l]; !ok {
			f.login[l] = struct{}{}
			n++
		}
	}
	return n, nil
}

func (f *fakeLogRepo) UpsertMailLogs(_ context.Context, logs []model.MailLogEntry) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.mail = append(f.mail, logs...)
	return len(logs), nil
}

func (f *fakeLogRepo) UpsertOpLogs(_ context.Context, logs []model.OpLogEntry) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.op = append(f.op, logs...)
	return len(logs), nil
}
