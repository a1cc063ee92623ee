package model

// Enum values equal the provider's integer codes. Codes the provider adds later
// map to the Unknown variant of each type instead of failing the record.

const unknownName = "UNKNOWN"

// LoginType is the client channel of a login event.
type LoginType int

// Login types.
const (
	LoginUnknown LoginType = -1
	LoginWeb     LoginType = 1
	LoginPhone   LoginType = 2
	LoginApp     LoginType = 3
	LoginClient  LoginType = 4
	LoginOther   LoginType = 5
)

var loginTypeNames = map[LoginType]string{
	LoginWeb:    "WEB",
	LoginPhone:  "PHONE",
	LoginApp:    "APP",
	LoginClient: "CLIENT",
	LoginOther:  "OTHER",
}

// LoginTypeFromCode maps a provider code.
func LoginTypeFromCode(code int) LoginType {
	if _, ok := loginTypeNames[LoginType(code)]; ok {
		return LoginType(code)
	}
	return LoginUnknown
}

func (t LoginType) String() string {
	if s, ok := loginTypeNames[t]; ok {
		return s
	}
	return unknownName
}

// MailType is the direction filter/tag of a mail event.
type MailType int

// Mail types.
const (
	MailUnknown MailType = -1
	MailAll     MailType = 0
	MailSend    MailType = 1
	MailReceive MailType = 2
)

var mailTypeNames = map[MailType]string{
	MailAll:     "ALL",
	MailSend:    "SEND",
	MailReceive: "RECEIVE",
}

// MailTypeFromCode maps a provider code.
func MailTypeFromCode(code int) MailType {
	if _, ok := mailTypeNames[MailType(code)]; ok {
		return MailType(code)
	}
	return MailUnknown
}

func (t MailType) String() string {
	if s, ok := mailTypeNames[t]; ok {
		return s
	}
	return unknownName
}

// MailStatus is the delivery state of a mail event.
type MailStatus int

// Mail statuses.
const (
	StatusUnknown      MailStatus = -1
	StatusOther        MailStatus = 0
	StatusSending      MailStatus = 1
	StatusRejected     MailStatus = 2
	StatusSendSuccess  MailStatus = 3
	StatusSendFailure  MailStatus = 4
	StatusRecvRejected MailStatus = 11
	StatusRecvJunk     MailStatus = 12
	StatusRecvSuccess  MailStatus = 13
	StatusRecvPersonal MailStatus = 14
	StatusAdminDeleted MailStatus = 15
)

var mailStatusNames = map[MailStatus]string{
	StatusOther:        "OTHER",
	StatusSending:      "SENDING",
	StatusRejected:     "REJECTED",
	StatusSendSuccess:  "SEND_SUCCESS",
	StatusSendFailure:  "SEND_FAILURE",
	StatusRecvRejected: "RECV_REJECTED",
	StatusRecvJunk:     "RECV_JUNK",
	StatusRecvSuccess:  "RECV_SUCCESS",
	StatusRecvPersonal: "RECV_PERSONAL",
	StatusAdminDeleted: "ADMIN_DELETED",
}

// MailStatusFromCode maps a provider code.
func MailStatusFromCode(code int) MailStatus {
	if _, ok := mailStatusNames[MailStatus(code)]; ok {
		return MailStatus(code)
	}
	return StatusUnknown
}

func (s MailStatus) String() string {
	if n, ok := mailStatusNames[s]; ok {
		return n
	}
	return unknownName
}

// OpQueryType filters the operation log request.
type OpQueryType int

// Operation log query filters.
const (
	OpQueryAll              OpQueryType = 0
	OpQueryProtocolSync     OpQueryType = 1
	OpQueryEditAdmin        OpQueryType = 2
	OpQuerySetSubAdmin      OpQueryType = 3
	OpQueryEditCorp         OpQueryType = 4
	OpQueryBlacklist        OpQueryType = 5
	OpQueryMailTransfer     OpQueryType = 6
	OpQueryMemberManage     OpQueryType = 7
	OpQueryMailBackup       OpQueryType = 8
	OpQueryMemberPermission OpQueryType = 9
)

// OpType is the kind of an administrative action.
type OpType int

// OpUnknown is returned for codes outside opTypeNames.
const OpUnknown OpType = -1

// Frequently referenced operation types.
const (
	OpReserved       OpType = 0
	OpLogin          OpType = 1
	OpChangePassword OpType = 2
	OpAddUser        OpType = 19
	OpDeleteUser     OpType = 20
	OpEditUserAlias  OpType = 24
	OpMergeData      OpType = 83
)

var opTypeNames = map[OpType]string{
	0:  "RESERVED",
	1:  "LOGIN",
	2:  "CHANGE_PASSWORD",
	3:  "ADD_DOMAIN",
	4:  "DELETE_DOMAIN",
	5:  "ADD_LOGO",
	6:  "DELETE_LOGO",
	7:  "CHANGE_SECURITY_MAIL",
	8:  "CHANGE_ADMIN_MAIL",
	9:  "PUBLISH_ANNOUNCEMENT",
	10: "BATCH_SEND",
	11: "ADD_BLACKLIST",
	12: "DELETE_BLACKLIST",
	13: "CLEAR_BLACKLIST",
	14: "ADD_WHITELIST",
	15: "DELETE_WHITELIST",
	16: "CLEAR_WHITELIST",
	17: "ADD_DOMAIN_WHITELIST",
	18: "DELETE_DOMAIN_WHITELIST",
	19: "ADD_USER",
	20: "DELETE_USER",
	21: "ENABLE_USER",
	22: "DISABLE_USER",
	23: "EDIT_USER",
	24: "EDIT_USER_ALIAS",
	25: "IMPORT_USER",
	26: "ADD_SUB_ADMIN",
	27: "DELETE_SUB_ADMIN",
	28: "ADD_DEPARTMENT",
	29: "DELETE_DEPARTMENT",
	30: "EDIT_DEPARTMENT",
	31: "MOVE_DEPARTMENT",
	32: "ADD_MAILGROUP",
	33: "DELETE_MAILGROUP",
	34: "EDIT_MAILGROUP",
	35: "SETUP_MAIL_BACKUP",
	36: "TRANSFER_MAIL",
	37: "SETUP_IP_PERMISSION",
	38: "LIMIT_SEND_OUTSIDE",
	39: "ENABLE_API",
	40: "RESET_API_KEY",
	41: "DISABLE_API",
	42: "CHANGE_CORP_NAME",
	43: "EXPORT_ARCHIVE_MAIL",
	44: "REBIND_MAILBOX",
	45: "CHANGE_PASSWORD_45", // provider reuses the meaning of 2
	46: "CHANGE_DOMAIN_LIMIT",
	47: "MEMBER_CHANGE_PASSWORD",
	48: "ENABLE_AUTO_FORWARD",
	49: "DISABLE_AUTO_FORWARD",
	50: "ENABLE_SAFE_LOGIN",
	51: "DISABLE_SAFE_LOGIN",
	52: "ALLOW_MEMBER_RECOVER_MAIL",
	53: "DISALLOW_MEMBER_RECOVER_MAIL",
	54: "ALLOW_MEMBER_AUTO_FORWARD",
	55: "DISALLOW_MEMBER_AUTO_FORWARD",
	56: "ENABLE_ARCHIVE",
	57: "DISABLE_ARCHIVE",
	58: "EXPORT_ARCHIVE",
	59: "VIEW_ARCHIVE",
	60: "ADD_LIMIT_SEND_OUTSIDE",
	61: "DELETE_LIMIT_SEND_OUTSIDE",
	62: "ENABLE_CHANGE_PASSWORD_PERIOD",
	63: "DISABLE_CHANGE_PASSWORD_PERIOD",
	64: "ADD_BACKUP_RULE",
	65: "DELETE_BACKUP_RULE",
	66: "CHANGE_MEMBER_PASSWORD",
	67: "CLEAR_LIMIT_SEND_OUTSIDE",
	68: "CONVERT_TO_SHARED_MAIL",
	69: "ADD_SHARED_MAIL",
	70: "DELETE_SHARED_MAIL",
	71: "CHANGE_SHARED_MAIL",
	72: "ADD_LABEL",
	73: "CHANGE_LABEL",
	74: "DELETE_LABEL",
	75: "ADD_LABEL_MEMBER",
	76: "DELETE_LABEL_MEMBER",
	77: "IMPORT_LABEL",
	78: "CONVERT_DEPARTMENT_TO_GROUP",
	79: "UNBIND_MAIL",
	80: "DELETE_UNBINDED_MAIL",
	81: "RECYCLE_SHARED_MAIL",
	82: "DELETE_MAILBOX",
	83: "MERGE_DATA_AND_MAILBOX",
}

// OpTypeFromCode maps a provider code.
func OpTypeFromCode(code int) OpType {
	if _, ok := opTypeNames[OpType(code)]; ok {
		return OpType(code)
	}
	return OpUnknown
}

func (t OpType) String() string {
	if s, ok := opTypeNames[t]; ok {
		return s
	}
	return unknownName
}
