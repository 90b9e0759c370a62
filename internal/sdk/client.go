package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is returned for non-2xx backend responses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// Client talks to the geometry backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type sessionResponse struct {
	SessionID  string                         `json:"sessionId"`
	Model      struct{ ID string }            `json:"model"`
	Parameters map[string]ParameterDefinition `json:"parameters"`
	Exports    map[string]ExportDefinition    `json:"exports"`
}

type exportRequest struct {
	Exports    []string          `json:"exports"`
	Parameters map[string]string `json:"parameters"`
}

type exportResult struct {
	Exports map[string]ExportResponse `json:"exports"`
}

// Open creates a session for the model identified by ticket.
func (c *Client) Open(ctx context.Context, ticket string) (*RemoteSession, error) {
	if strings.TrimSpace(ticket) == "" {
		return nil, fmt.Errorf("open session: ticket required")
	}
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/v2/ticket/"+url.PathEscape(ticket), nil, &resp); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	if resp.SessionID == "" {
		return nil, fmt.Errorf("open session: backend returned no session id")
	}
	s := &RemoteSession{
		client:  c,
		id:      resp.SessionID,
		modelID: resp.Model.ID,
		params:  make(map[string]*valueParam, len(resp.Parameters)),
		exports: make(map[string]*remoteExport, len(resp.Exports)),
	}
	for id, def := range resp.Parameters {
		if def.ID == "" {
			def.ID = id
		}
		s.params[def.ID] = newValueParam(def)
	}
	for id, def := range resp.Exports {
		if def.ID == "" {
			def.ID = id
		}
		s.exports[def.ID] = &remoteExport{session: s, def: def}
	}
	return s, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	httpc := c.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}
	res, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		if json.Unmarshal(raw, &e) != nil || e.Message == "" {
			e.Message = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: res.StatusCode, Message: e.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// RemoteSession is a Session backed by the HTTP API.
type RemoteSession struct {
	client  *Client
	id      string
	modelID string
	params  map[string]*valueParam
	exports map[string]*remoteExport
}

func (s *RemoteSession) ID() string      { return s.id }
func (s *RemoteSession) ModelID() string { return s.modelID }

func (s *RemoteSession) Parameters() map[string]Parameter {
	out := make(map[string]Parameter, len(s.params))
	for id, p := range s.params {
		out[id] = p
	}
	return out
}

func (s *RemoteSession) Exports() map[string]Export {
	out := make(map[string]Export, len(s.exports))
	for id, e := range s.exports {
		out[id] = e
	}
	return out
}

func (s *RemoteSession) Customize(ctx context.Context) error {
	values := currentValues(s.params, nil)
	if err := s.client.do(ctx, http.MethodPut, s.path("output"), values, nil); err != nil {
		return fmt.Errorf("customize: %w", err)
	}
	return nil
}

func (s *RemoteSession) Close(ctx context.Context) error {
	if err := s.client.do(ctx, http.MethodPost, s.path("close"), nil, nil); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

func (s *RemoteSession) path(op string) string {
	return "/api/v2/session/" + url.PathEscape(s.id) + "/" + op
}

type remoteExport struct {
	session *RemoteSession
	def     ExportDefinition
}

func (e *remoteExport) Definition() ExportDefinition { return e.def }

func (e *remoteExport) Request(ctx context.Context, overrides map[string]string) (ExportResponse, error) {
	body := exportRequest{
		Exports:    []string{e.def.ID},
		Parameters: currentValues(e.session.params, overrides),
	}
	var out exportResult
	if err := e.session.client.do(ctx, http.MethodPut, e.session.path("export"), body, &out); err != nil {
		return ExportResponse{}, fmt.Errorf("export %s: %w", e.def.Name, err)
	}
	res, ok := out.Exports[e.def.ID]
	if !ok {
		return ExportResponse{}, fmt.Errorf("export %s: missing from response", e.def.Name)
	}
	if res.ID == "" {
		res.ID = e.def.ID
	}
	return res, nil
}
