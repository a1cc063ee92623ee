package exmail

// Status is the envelope every provider response carries.
type Status struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (s *Status) status() *Status { return s }

type response interface{ status() *Status }

// Required fields are pointers so that absence can be told apart from zero values.

// DepartmentRecord is one entry of department/list.
type DepartmentRecord struct {
	ID       *int64  `json:"id"`
	Name     *string `json:"name"`
	ParentID *int64  `json:"parentid"`
	Order    int64   `json:"order"`
}

// MemberRecord is one entry of user/simplelist.
type MemberRecord struct {
	UserID     *string  `json:"userid"`
	Name       string   `json:"name"`
	Department []int64  `json:"department"`
	Slaves     []string `json:"slaves"`
	CpwdLogin  int      `json:"cpwd_login"`
	Enable     int      `json:"enable"`
}

// LoginRecord is one entry of log/login.
type LoginRecord struct {
	Time *int64 `json:"time"`
	Type int    `json:"type"`
	IP   string `json:"ip"`
}

// MailRecord is one entry of log/mail.
type MailRecord struct {
	Time     *int64 `json:"time"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Subject  string `json:"subject"`
	Status   int    `json:"status"`
	MailType int    `json:"mailtype"`
}

// OpRecord is one entry of log/operation.
type OpRecord struct {
	Time     *int64 `json:"time"`
	Operator string `json:"operator"`
	Type     int    `json:"type"`
	Operand  string `json:"operand"`
}

type tokenResponse struct {
	Status
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type departmentListResponse struct {
	Status
	Department []DepartmentRecord `json:"department"`
}

type memberListResponse struct {
	Status
	UserList []MemberRecord `json:"userlist"`
}

type loginLogResponse struct {
	Status
	List []LoginRecord `json:"list"`
}

type mailLogResponse struct {
	Status
	List []MailRecord `json:"list"`
}

type opLogResponse struct {
	Status
	List []OpRecord `json:"list"`
}

type logRequest struct {
	BeginDate string `json:"begin_date"`
	EndDate   string `json:"end_date"`
	UserID    string `json:"userid,omitempty"`
}

type mailLogRequest struct {
	logRequest
	MailType int `json:"mailtype"`
}

type opLogRequest struct {
	Type int `json:"type"`
	logRequest
}
