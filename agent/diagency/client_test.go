package diagency

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

func TestMain(m *testing.M) {
	try.To(flag.Set("logtostderr", "true"))
	try.To(flag.Set("v", "1"))
	os.Exit(m.Run())
}

func newServer(h http.HandlerFunc) (*httptest.Server, *Client) {
	srv := httptest.NewServer(h)
	return srv, New(srv.URL+"/diagency/", srv.Client(), time.Second)
}

func TestClient_URL(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	c := New("https://localhost:9720/diagency/", nil, 0)
	assert.Equal("https://localhost:9720/diagency/v1.0/diagency/agents",
		c.URL("v1.0/diagency/agents"))
	assert.Equal("https://localhost:9720/diagency/v1.0/diagency/agents",
		c.URL("/v1.0/diagency/agents"))
}

func TestWithFilter(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	p := try.To1(WithFilter("v1.0/diagency/agents", map[string]string{"name": "issuer"}))
	u := try.To1(url.Parse("https://x/" + p))
	assert.Equal(`{"name":"issuer"}`, u.Query().Get("filter"))

	p = try.To1(WithFilter(WithQuery("v1.0/diagency/agents", "includepass", "true"),
		map[string]string{"schema.id": "s 1"}))
	u = try.To1(url.Parse("https://x/" + p))
	assert.Equal("true", u.Query().Get("includepass"))
	assert.Equal(`{"schema.id":"s 1"}`, u.Query().Get("filter"))

	p = try.To1(WithFilter("v1.0/diagency/agents", nil))
	assert.Equal("v1.0/diagency/agents", p)
}

func TestClient_Post(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	var (
		gotAuth, gotReqID, gotAccept, gotPath string
		gotBody                               map[string]any
	)
	srv, c := newServer(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get(HeaderRequestID)
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", JSONMime)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"schema-1","name":"mDL","nested":{"state":"x"}}`))
	})
	defer srv.Close()

	r, err := c.Post(context.Background(), "tok", "v2.0/diagency/credential_schemas",
		map[string]any{"name": "mDL", "version": "4.2"}, http.StatusCreated)
	assert.NoError(err)
	assert.Equal("schema-1", r.ID())
	assert.Equal("x", r.Get("nested.state").String())
	assert.That(r.Has("nested"))
	assert.That(!r.Has("state"))

	assert.Equal("Bearer tok", gotAuth)
	_, err = uuid.Parse(gotReqID)
	assert.NoError(err)
	assert.Equal(JSONMime, gotAccept)
	assert.Equal("/diagency/v2.0/diagency/credential_schemas", gotPath)
	assert.Equal("4.2", gotBody["version"])
}

func TestClient_UnexpectedStatus(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, c := newServer(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	})
	defer srv.Close()

	r, err := c.Get(context.Background(), "tok", "v1.0/diagency/agents/1", http.StatusOK)
	assert.Error(err)
	assert.That(r == nil)
	assert.That(IsStatusError(err))

	var se *StatusError
	assert.That(errors.As(err, &se))
	assert.Equal(http.StatusNotFound, se.Got)
	assert.Equal(http.StatusOK, se.Want)
	assert.Equal(http.MethodGet, se.Method)
}

func TestClient_Accept(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	const pem = "application/x-pem-file"
	contentType := pem
	srv, c := newServer(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte("-----BEGIN CERTIFICATE-----"))
	})
	defer srv.Close()

	r, err := c.Do(context.Background(), http.MethodGet, "tok", "cert", nil, http.StatusOK, pem)
	assert.NoError(err)
	assert.Equal("-----BEGIN CERTIFICATE-----", r.String())

	contentType = "text/plain"
	_, err = c.Do(context.Background(), http.MethodGet, "tok", "cert", nil, http.StatusOK, pem)
	assert.Error(err)
	var ce *ContentTypeError
	assert.That(errors.As(err, &ce))
	assert.Equal("text/plain", ce.Got)
	assert.That(!IsStatusError(err))
}

func TestClient_Timeout(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	done := make(chan struct{})
	srv, c := newServer(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	})
	defer srv.Close()
	defer close(done)

	c.Timeout = 50 * time.Millisecond
	_, err := c.Get(context.Background(), "tok", "slow", http.StatusOK)
	assert.Error(err)
	assert.That(errors.Is(err, context.DeadlineExceeded))
}

func TestResource_ItemsAndDecode(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	r := &Resource{
		Status: http.StatusOK,
		Raw: []byte(`{"count":2,"items":[
			{"id":"a1","name":"issuer","agent_type":"issuer","is_did_on_ledger":false},
			{"id":"a2","name":"verifier","agent_type":"verifier"}]}`),
	}
	assert.Equal(int64(2), r.Count())
	items := r.Items()
	assert.Equal(2, len(items))
	assert.Equal("a2", items[1].ID())

	var a struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		AgentType string `json:"agent_type"`
		OnLedger  bool   `json:"is_did_on_ledger"`
	}
	assert.NoError(items[0].Decode(&a))
	assert.Equal("a1", a.ID)
	assert.Equal("issuer", a.AgentType)
	assert.That(!a.OnLedger)

	empty := &Resource{Raw: []byte(`{"count":0,"items":[]}`)}
	assert.Equal(0, len(empty.Items()))
}

func TestTokenSource(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", JSONMime)
		ok := false
		switch r.PostForm.Get("grant_type") {
		case "client_credentials":
			ok = r.PostForm.Get("client_id") == "admin" &&
				r.PostForm.Get("client_secret") == "secret"
		case "password":
			ok = r.PostForm.Get("client_id") == HolderClientID &&
				r.PostForm.Get("username") == "user_1" &&
				r.PostForm.Get("password") == "secret"
		}
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-` +
			r.PostForm.Get("grant_type") + `","token_type":"bearer"}`))
	}))
	defer srv.Close()

	ts := NewTokenSource(srv.URL+"/oauth2/token", srv.Client())
	ctx := context.Background()

	tok, err := ts.AccessToken(ctx, "admin", "secret")
	assert.NoError(err)
	assert.Equal("tok-client_credentials", tok)

	tok, err = ts.HolderAccessToken(ctx, "user_1", "secret")
	assert.NoError(err)
	assert.Equal("tok-password", tok)

	_, err = ts.AccessToken(ctx, "admin", "wrong")
	assert.Error(err)
	assert.That(strings.Contains(err.Error(), "admin"))
	assert.That(!strings.Contains(err.Error(), "wrong"))

	_, err = ts.HolderAccessToken(ctx, "user_2", "secret")
	assert.Error(err)
	assert.That(strings.Contains(err.Error(), "user_2"))
}

func TestNewHTTPClient(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	hc, err := NewHTTPClient(TLSConfig{Insecure: true})
	assert.NoError(err)
	tr := hc.Transport.(*http.Transport)
	assert.That(tr.TLSClientConfig.InsecureSkipVerify)

	_, err = NewHTTPClient(TLSConfig{CACertPath: "/no/such/ca.pem"})
	assert.Error(err)

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", JSONMime)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, hc, time.Second)
	_, err = c.Get(context.Background(), "", "ping", http.StatusOK)
	assert.NoError(err)
}

func TestClient_AnySuccess(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	status := http.StatusCreated
	srv, c := newServer(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"id":"t1"}`))
	})
	defer srv.Close()

	r, err := c.Post(context.Background(), "tok", "templates", map[string]any{}, AnySuccess)
	assert.NoError(err)
	assert.Equal("t1", r.ID())

	status = http.StatusBadRequest
	_, err = c.Post(context.Background(), "tok", "templates", map[string]any{}, AnySuccess)
	assert.Error(err)
	assert.That(strings.Contains(err.Error(), "want 2xx"))
}
