/*
Package diagency is a small REST client of the diagency service. It offers
authenticated JSON requests with expected status checks and the OAuth2 token
grants the demo agents use.

All requests and responses are logged with glog at V(1).
*/
package diagency

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/findy-network/diagency-demo/agent/utils"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	JSONMime = "application/json"

	HeaderRequestID = "X-Request-Id"

	// AnySuccess as an expected status accepts every 2xx status.
	AnySuccess = 0
)

// Client calls the agency API under BaseURL, e.g.
// https://localhost:9720/diagency. Paths are given relative to it:
// v1.0/diagency/agents.
type Client struct {
	BaseURL string
	Timeout time.Duration

	hc *http.Client
}

// New returns a client for the base URL. If hc is nil the default http client
// is used. Timeout zero means no per request timeout.
func New(baseURL string, hc *http.Client, timeout time.Duration) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Timeout: timeout,
		hc:      hc,
	}
}

// HTTPClient returns the underlying http client. The token grants use it too.
func (c *Client) HTTPClient() *http.Client {
	return c.hc
}

func (c *Client) URL(path string) string {
	return c.BaseURL + "/" + strings.TrimPrefix(path, "/")
}

// WithQuery adds the query parameter to the path.
func WithQuery(path, key, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}

// WithFilter adds the filter query to the path. The filter is JSON encoded.
func WithFilter(path string, filter any) (p string, err error) {
	defer err2.Handle(&err, "filter")

	if filter == nil {
		return path, nil
	}
	data := try.To1(json.Marshal(filter))
	return WithQuery(path, "filter", string(data)), nil
}

func (c *Client) Get(ctx context.Context, token, path string, expected int) (*Resource, error) {
	return c.Do(ctx, http.MethodGet, token, path, nil, expected, JSONMime)
}

func (c *Client) Post(ctx context.Context, token, path string, body any, expected int) (*Resource, error) {
	return c.Do(ctx, http.MethodPost, token, path, body, expected, JSONMime)
}

func (c *Client) Put(ctx context.Context, token, path string, body any, expected int) (*Resource, error) {
	return c.Do(ctx, http.MethodPut, token, path, body, expected, JSONMime)
}

func (c *Client) Patch(ctx context.Context, token, path string, body any, expected int) (*Resource, error) {
	return c.Do(ctx, http.MethodPatch, token, path, body, expected, JSONMime)
}

func (c *Client) Delete(ctx context.Context, token, path string, expected int) (*Resource, error) {
	return c.Do(ctx, http.MethodDelete, token, path, nil, expected, JSONMime)
}

// Do sends the request and checks the response status against expected. The
// accept is the media type we ask for. When it's not JSON the body is returned
// as is, and a successful response must have the same content type.
func (c *Client) Do(
	ctx context.Context,
	method, token, path string,
	body any,
	expected int,
	accept string,
) (r *Resource, err error) {
	u := c.URL(path)
	defer err2.Handle(&err, "%s %s", method, path)

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if body != nil {
		data := try.To1(json.Marshal(body))
		reqBody = bytes.NewReader(data)
	}
	req := try.To1(http.NewRequestWithContext(ctx, method, u, reqBody))
	reqID := utils.UUID()
	req.Header.Set("Accept", accept)
	req.Header.Set("Content-Type", JSONMime)
	req.Header.Set(HeaderRequestID, reqID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	logRequest(method, u, reqID, body)

	resp := try.To1(c.hc.Do(req))
	defer resp.Body.Close()
	data := try.To1(io.ReadAll(resp.Body))

	r = &Resource{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Raw:         data,
	}
	logResponse(reqID, r, accept)

	if accept != JSONMime && isSuccess(r.Status) && r.ContentType != accept {
		return nil, &ContentTypeError{URL: u, Want: accept, Got: r.ContentType}
	}
	if !statusOK(r.Status, expected) {
		return nil, &StatusError{
			Method: method,
			URL:    u,
			Want:   expected,
			Got:    r.Status,
			Body:   string(data),
		}
	}
	return r, nil
}

func statusOK(status, expected int) bool {
	if expected == AnySuccess {
		return isSuccess(status)
	}
	return status == expected
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func logRequest(method, u, reqID string, body any) {
	if !glog.V(1) {
		return
	}
	if body == nil {
		glog.Infof("%s %s [%s]", method, u, reqID)
		return
	}
	data, err := json.MarshalIndent(body, "", "    ")
	if err != nil {
		glog.Warningf("%s %s [%s]: cannot log body: %v", method, u, reqID, err)
		return
	}
	glog.Infof("%s %s [%s]\n%s", method, u, reqID, data)
}

func logResponse(reqID string, r *Resource, accept string) {
	if !glog.V(1) {
		return
	}
	if accept != JSONMime {
		glog.Infof("Response [%s]: %d - %s", reqID, r.Status, r.ContentType)
		return
	}
	glog.Infof("Response [%s]: %d:\n%s", reqID, r.Status, indent(r.Raw))
}

func indent(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "    "); err != nil {
		return string(data)
	}
	return buf.String()
}
