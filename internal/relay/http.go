package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"graphseal/internal/domain"
	"graphseal/internal/errs"
)

// Rejection is the body the relay sends with 403 Forbidden.
type Rejection struct {
	ID   string `json:"id"`
	Err  string `json:"err"`
	Code string `json:"code,omitempty"`
}

// Ack is the body of a successful put.
type Ack struct {
	ID string `json:"id"`
	OK bool   `json:"ok"`
}

type HTTP struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client for the relay at base. A nil client selects
// http.DefaultClient.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Base: strings.TrimRight(base, "/"), HTTP: client}
}

// Put sends one mutation.
func (c *HTTP) Put(ctx context.Context, m domain.Mutation) error {
	var ack Ack
	return c.post(ctx, "/put", m, &ack)
}

// Node returns soul's stored wire values plus the "_" metadata holding
// each key's state. A missing node is an empty map.
func (c *HTTP) Node(ctx context.Context, soul string) (map[string]any, error) {
	out := map[string]any{}
	if err := c.getJSON(ctx, "/node/"+url.PathEscape(soul), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTP) post(ctx context.Context, path string, in any, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusForbidden {
		return rejection(resp.Body)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay post %s: %s", path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *HTTP) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay get %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func rejection(body io.Reader) error {
	var r Rejection
	if err := json.NewDecoder(io.LimitReader(body, 1<<16)).Decode(&r); err != nil {
		return errs.Wrap(errs.UnverifiedData, "relay rejected the mutation", err)
	}
	code := errs.Code(r.Code)
	if code == "" {
		code = errs.UnverifiedData
	}
	return errs.New(code, r.Err)
}

var _ domain.RelayClient = (*HTTP)(nil)
