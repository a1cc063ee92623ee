package exmail

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/and161185/exmail-sync/internal/errs"
	"github.com/and161185/exmail-sync/internal/model"
)

const dateLayout = "2006-01-02"

// Authenticator exchanges corp credentials for an access token.
type Authenticator struct{ t *Transport }

// NewAuthenticator constructs an Authenticator over t.
func NewAuthenticator(t *Transport) *Authenticator { return &Authenticator{t: t} }

// FetchToken calls gettoken and returns the token with its server-reported TTL.
func (a *Authenticator) FetchToken(ctx context.Context, corpID, secret string) (string, time.Duration, error) {
	q := url.Values{}
	q.Set("corpid", corpID)
	q.Set("corpsecret", secret)
	var resp tokenResponse
	if err := a.t.call(ctx, http.MethodGet, "gettoken", q, nil, &resp); err != nil {
		return "", 0, err
	}
	if resp.AccessToken == "" {
		return "", 0, &errs.RemoteError{Op: "gettoken", Code: -1, Msg: "empty access_token"}
	}
	return resp.AccessToken, time.Duration(resp.ExpiresIn) * time.Second, nil
}

// TokenSource yields a currently valid access token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client calls authenticated endpoints. Safe for concurrent use.
type Client struct {
	t      *Transport
	tokens TokenSource
}

// NewClient constructs a Client that obtains tokens from ts.
func NewClient(t *Transport, ts TokenSource) *Client { return &Client{t: t, tokens: ts} }

func (c *Client) authQuery(ctx context.Context) (url.Values, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, errors.Join(errs.ErrAuth, errors.New("no access token"))
	}
	q := url.Values{}
	q.Set("access_token", tok)
	return q, nil
}

// ListDepartments returns the direct children of department id.
func (c *Client) ListDepartments(ctx context.Context, id int64) ([]DepartmentRecord, error) {
	q, err := c.authQuery(ctx)
	if err != nil {
		return nil, err
	}
	q.Set("id", strconv.FormatInt(id, 10))
	var resp departmentListResponse
	if err := c.t.call(ctx, http.MethodGet, "department/list", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Department, nil
}

// ListMembers returns the members of department id, including descendants when fetchChild is set.
func (c *Client) ListMembers(ctx context.Context, departmentID int64, fetchChild bool) ([]MemberRecord, error) {
	q, err := c.authQuery(ctx)
	if err != nil {
		return nil, err
	}
	q.Set("department_id", strconv.FormatInt(departmentID, 10))
	if fetchChild {
		q.Set("fetch_child", "1")
	} else {
		q.Set("fetch_child", "0")
	}
	var resp memberListResponse
	if err := c.t.call(ctx, http.MethodGet, "user/simplelist", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.UserList, nil
}

// UpdateMember sends fields for userID to user/update.
func (c *Client) UpdateMember(ctx context.Context, userID string, fields map[string]any) error {
	q, err := c.authQuery(ctx)
	if err != nil {
		return err
	}
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["userid"] = userID
	var resp Status
	return c.t.call(ctx, http.MethodPost, "user/update", q, body, &resp)
}

// LoginLog returns login events of one mailbox within [from, to].
func (c *Client) LoginLog(ctx context.Context, address string, from, to time.Time) ([]LoginRecord, error) {
	q, err := c.authQuery(ctx)
	if err != nil {
		return nil, err
	}
	req := newLogRequest(address, from, to)
	var resp loginLogResponse
	if err := c.t.call(ctx, http.MethodPost, "log/login", q, req, &resp); err != nil {
		return nil, err
	}
	return resp.List, nil
}

// MailLog returns mail events of one mailbox within [from, to] filtered by mailType.
func (c *Client) MailLog(
	ctx context.Context, address string, from, to time.Time, mailType model.MailType,
) ([]MailRecord, error) {
	q, err := c.authQuery(ctx)
	if err != nil {
		return nil, err
	}
	req := mailLogRequest{logRequest: newLogRequest(address, from, to), MailType: int(mailType)}
	var resp mailLogResponse
	if err := c.t.call(ctx, http.MethodPost, "log/mail", q, req, &resp); err != nil {
		return nil, err
	}
	return resp.List, nil
}

// OpLog returns corp-wide administrative actions within [from, to].
func (c *Client) OpLog(ctx context.Context, from, to time.Time, kind model.OpQueryType) ([]OpRecord, error) {
	q, err := c.authQuery(ctx)
	if err != nil {
		return nil, err
	}
	req := opLogRequest{Type: int(kind), logRequest: newLogRequest("", from, to)}
	var resp opLogResponse
	if err := c.t.call(ctx, http.MethodPost, "log/operation", q, req, &resp); err != nil {
		return nil, err
	}
	return resp.List, nil
}

func newLogRequest(address string, from, to time.Time) logRequest {
	return logRequest{
		BeginDate: from.Format(dateLayout),
		EndDate:   to.Format(dateLayout),
		UserID:    address,
	}
}
