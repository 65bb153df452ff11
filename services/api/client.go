package apisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/padhaihq/padhai/core"
	"github.com/padhaihq/padhai/core/panel"
	"github.com/padhaihq/padhai/core/user"
)

// Client talks to the admin REST API. It implements panel.Client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ panel.Client = (*Client)(nil) // interface compliance check

func NewClient(conf *core.Config, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Client.BaseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: conf.Client.Timeout},
	}
}

// WithToken returns a copy of the Client authenticated as a new identity.
// Used after impersonation: the old client must be discarded with the rest
// of the previous identity's state.
func (c *Client) WithToken(token string) *Client {
	return &Client{baseURL: c.baseURL, token: token, http: c.http}
}

// APIError carries the server-reported message of a failed request verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

type (
	listResponse struct {
		Users      []user.User     `json:"users"`
		Pagination user.Pagination `json:"pagination"`
	}

	mutationResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	authResponse struct {
		User    user.User `json:"user"`
		Token   string    `json:"token"`
		Message string    `json:"message"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return errors.Wrap(err, "encoding request body")
		}
	}

	req, err := http.NewRequest(method, u, &buf)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response body")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload errorResponse
		if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrap(err, "decoding response body")
		}
	}
	return nil
}

func (c *Client) ListUsers(ctx context.Context, params panel.ListParams) (panel.ListResult, error) {
	query := make(url.Values)
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("pageSize", strconv.Itoa(params.PageSize))
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Role != "" {
		query.Set("role", params.Role)
	}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if params.Premium != "" {
		query.Set("premium", params.Premium)
	}

	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", query, nil, &resp); err != nil {
		return panel.ListResult{}, err
	}
	if resp.Users == nil {
		resp.Users = []user.User{}
	}
	return panel.ListResult{Users: resp.Users, Pagination: resp.Pagination}, nil
}

func (c *Client) ChangeRole(ctx context.Context, userID, role string) (string, error) {
	var resp mutationResponse
	body := map[string]string{"role": role}
	if err := c.do(ctx, http.MethodPatch, "/api/admin/users/"+userID+"/role", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) SetPremium(ctx context.Context, userID string, isPaid bool) (string, error) {
	var resp mutationResponse
	body := map[string]bool{"isPaidUser": isPaid}
	if err := c.do(ctx, http.MethodPatch, "/api/admin/users/"+userID+"/premium", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) SetDisabled(ctx context.Context, userID string, isDisabled bool) (string, error) {
	var resp mutationResponse
	body := map[string]bool{"isDisabled": isDisabled}
	if err := c.do(ctx, http.MethodPatch, "/api/admin/users/"+userID+"/status", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) Impersonate(ctx context.Context, userID string) (panel.Identity, error) {
	var resp authResponse
	body := map[string]string{"targetUserId": userID}
	if err := c.do(ctx, http.MethodPost, "/api/auth/admin/impersonate", nil, body, &resp); err != nil {
		return panel.Identity{}, err
	}
	return panel.Identity{User: resp.User, Token: resp.Token, Message: resp.Message}, nil
}

// Login authenticates with email and password; used by the admin CLI to
// obtain its session token.
func (c *Client) Login(ctx context.Context, email, password string) (panel.Identity, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &resp); err != nil {
		return panel.Identity{}, err
	}
	return panel.Identity{User: resp.User, Token: resp.Token, Message: resp.Message}, nil
}
