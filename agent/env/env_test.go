package env

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/findy-network/diagency-demo/agent/poll"
	"github.com/findy-network/diagency-demo/server"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

func TestMain(m *testing.M) {
	try.To(flag.Set("logtostderr", "true"))
	try.To(flag.Set("v", "0"))
	os.Exit(m.Run())
}

func testConfig(t *testing.T, srv *httptest.Server) Config {
	cfg := DefaultConfig()
	cfg.TokenURL = server.TokenURL(srv)
	cfg.AgencyURL = server.APIURL(srv)
	cfg.AdminID = server.TestAdminID
	cfg.AdminSecret = server.TestAdminSecret
	cfg.SecretsFile = filepath.Join(t.TempDir(), "build", "secrets.txt")
	cfg.Poll = poll.Config{Interval: 5 * time.Millisecond, Timeout: 100 * time.Millisecond}
	cfg.Timeout = 5 * time.Second
	return cfg
}

func newEnv(t *testing.T, cfg Config) *Environment {
	e, err := New(context.Background(), cfg)
	assert.NoError(err)
	return e
}

func TestNew_AdminTokenFails(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, _ := server.StartTestHTTPServer()
	defer srv.Close()

	cfg := testConfig(t, srv)
	cfg.AdminSecret = "wrong"
	_, err := New(context.Background(), cfg)
	assert.Error(err)
	assert.That(strings.Contains(err.Error(), cfg.AdminID))
}

func TestSetupAgentsAndTokens(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, agency := server.StartTestHTTPServer()
	defer srv.Close()
	cfg := testConfig(t, srv)
	ctx := context.Background()

	e := newEnv(t, cfg)
	assert.NoError(e.SetupAgentsAndTokens(ctx, false, 1, 2))
	assert.DeepEqual([]string{"holder", "holder1", "issuer", "issuer_1", "verifier"}, e.Roles())
	assert.Equal(5, agency.Count("agents"))

	issuer := try.To1(e.Agent(RoleIssuer))
	assert.Equal("issuer", issuer.Name)
	assert.Equal("did:web", issuer.DIDMethod)
	assert.That(!issuer.OnLedger)
	assert.That(issuer.ClientSecret != "")

	holder1 := try.To1(e.Agent("holder1"))
	assert.Equal("cn=user_2,ou=users,dc=ibm,dc=com", holder1.ID)
	_, err := e.Token("holder1")
	assert.NoError(err)

	_, err = e.Token("nobody")
	assert.That(errors.Is(err, ErrUnknownRole))

	// secrets of issuers and the verifier, holders have none
	assert.Equal(3, e.Secrets().Len())

	again := newEnv(t, cfg)
	assert.NoError(again.SetupAgentsAndTokens(ctx, false, 1, 2))
	assert.Equal(5, agency.Count("agents"))
	issuer2 := try.To1(again.Agent(RoleIssuer))
	assert.Equal(issuer.ID, issuer2.ID)
	assert.Equal(issuer.ClientSecret, issuer2.ClientSecret)
}

func TestSetupAgentsAndTokens_Hyperledger(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, _ := server.StartTestHTTPServer()
	defer srv.Close()

	e := newEnv(t, testConfig(t, srv))
	assert.NoError(e.SetupAgentsAndTokens(context.Background(), true, 0, 1))
	issuer := try.To1(e.Agent(RoleIssuer))
	assert.Equal("indyIssuer", issuer.Name)
	assert.Equal("did:indy", issuer.DIDMethod)
	assert.That(issuer.OnLedger)
}

func TestCreateAgent_NoCachedSecret(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, _ := server.StartTestHTTPServer()
	defer srv.Close()
	cfg := testConfig(t, srv)
	ctx := context.Background()

	assert.NoError(newEnv(t, cfg).SetupAgentsAndTokens(ctx, false, 0, 1))
	try.To(os.Remove(cfg.SecretsFile))

	err := newEnv(t, cfg).SetupAgentsAndTokens(ctx, false, 0, 1)
	assert.Error(err)
	assert.That(errors.Is(err, ErrNoSecret))
}

func TestGetIfResourceExists(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, _ := server.StartTestHTTPServer()
	cfg := testConfig(t, srv)
	ctx := context.Background()
	e := newEnv(t, cfg)

	r, err := e.GetIfResourceExists(ctx, RoleAdmin, AgentsPath, map[string]string{"name": "x"})
	assert.NoError(err)
	assert.That(r == nil)

	a, err := e.EnsureAgent(ctx, RoleVerifier, map[string]any{
		"name": "x", "agent_type": "verifier",
	}, true)
	assert.NoError(err)

	r, err = e.GetIfResourceExists(ctx, RoleAdmin, AgentsPath, map[string]string{"name": "x"})
	assert.NoError(err)
	assert.Equal(a.ID, r.ID())

	// failing lookups are missing resources
	r, err = e.GetIfResourceExists(ctx, RoleAdmin, AgentsPath+"/no-such-agent", nil)
	assert.NoError(err)
	assert.That(r == nil)

	srv.Close()
	_, err = e.GetIfResourceExists(ctx, RoleAdmin, AgentsPath, nil)
	assert.Error(err)
}

func TestEnsureAgent_IncludePass(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, agency := server.StartTestHTTPServer()
	defer srv.Close()
	ctx := context.Background()
	cfg := testConfig(t, srv)

	body := map[string]any{"id": "", "name": "DMVIssuer", "agent_type": "issuer"}
	a := try.To1(newEnv(t, cfg).EnsureAgent(ctx, RoleIssuer, body, true))
	b := try.To1(newEnv(t, cfg).EnsureAgent(ctx, RoleIssuer, body, true))
	assert.Equal(a.ID, b.ID)
	assert.Equal(a.ClientSecret, b.ClientSecret)
	assert.Equal(1, agency.Count("agents"))
	assert.Equal(server.Certificate, b.Raw.Get("mso_mdoc.certificate").String())
}

func TestConnectHolderTo(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, _ := server.StartTestHTTPServer()
	defer srv.Close()
	ctx := context.Background()

	e := newEnv(t, testConfig(t, srv))
	assert.NoError(e.SetupAgentsAndTokens(ctx, false, 0, 1))

	c, err := e.ConnectHolderTo(ctx, RoleIssuer)
	assert.NoError(err)
	assert.That(strings.HasPrefix(c.LocalDID, "did:peer:"))
	assert.That(strings.HasPrefix(c.RemoteDID, "did:peer:"))
	assert.NotEqual(c.LocalDID, c.RemoteDID)

	_, err = e.ConnectHolderTo(ctx, "nobody")
	assert.That(errors.Is(err, ErrUnknownRole))

	list := try.To1(e.Get(ctx, RoleIssuer, ConnectionsPath, http.StatusOK))
	assert.Equal(int64(1), list.Count())
	assert.NoError(e.DeleteAllConnections(ctx, RoleIssuer))
	list = try.To1(e.Get(ctx, RoleIssuer, ConnectionsPath, http.StatusOK))
	assert.Equal(int64(0), list.Count())
}

func TestToConnection_UnqualifiedDIDs(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	raw := `{"id":"conn-1","state":"connected",
		"local":{"pairwise":{"did":"Th7MpTaRZVRYnPiabds81Y"}},
		"remote":{"pairwise":{"did":"did:indy:sovrin:WRfXPg8dantKVubE3HX8pw"}}}`
	r := &diagency.Resource{
		Status:      http.StatusOK,
		ContentType: diagency.JSONMime,
		Raw:         []byte(raw),
	}
	c, err := toConnection(r)
	assert.NoError(err)
	assert.Equal("conn-1", c.ID)
	assert.Equal("Th7MpTaRZVRYnPiabds81Y", c.LocalDID)
	assert.Equal("did:indy:sovrin:WRfXPg8dantKVubE3HX8pw", c.RemoteDID)
}

func TestWaitForState(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, _ := server.StartTestHTTPServer()
	defer srv.Close()
	ctx := context.Background()

	e := newEnv(t, testConfig(t, srv))
	assert.NoError(e.SetupAgentsAndTokens(ctx, false, 0, 1))

	v := try.To1(e.Post(ctx, RoleVerifier, "v1.0/diagency/verifications",
		map[string]any{"state": "outbound_proof_request"}, http.StatusOK))
	p := "v1.0/diagency/verifications/" + v.ID()

	r, err := e.WaitForState(ctx, RoleHolder, p, "passed", "outbound_proof_request")
	assert.NoError(err)
	assert.Equal("outbound_proof_request", r.State())

	start := time.Now()
	r, err = e.WaitForState(ctx, RoleHolder, p, "passed", "failed")
	assert.Error(err)
	assert.That(errors.Is(err, poll.ErrTimeout))
	assert.That(strings.Contains(err.Error(), `"outbound_proof_request"`))
	assert.That(time.Since(start) >= e.Config().Poll.Timeout)
	assert.Equal("outbound_proof_request", r.State())

	_, err = e.WaitForState(ctx, RoleHolder, "v1.0/diagency/verifications/none", "passed")
	assert.Error(err)
	assert.That(diagency.IsStatusError(err))
	assert.That(!errors.Is(err, poll.ErrTimeout))
}

func TestCleanup(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, agency := server.StartTestHTTPServer()
	defer srv.Close()
	ctx := context.Background()
	cfg := testConfig(t, srv)

	e := newEnv(t, cfg)
	assert.NoError(e.SetupAgentsAndTokens(ctx, false, 0, 1))
	_, err := os.Stat(cfg.SecretsFile)
	assert.NoError(err)

	assert.NoError(e.Cleanup(ctx))
	assert.Equal(0, agency.Count("agents"))
	_, err = os.Stat(filepath.Dir(cfg.SecretsFile))
	assert.That(os.IsNotExist(err))
}

func TestDeleteAgents_AllRemote(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, agency := server.StartTestHTTPServer()
	defer srv.Close()
	ctx := context.Background()
	cfg := testConfig(t, srv)

	assert.NoError(newEnv(t, cfg).SetupAgentsAndTokens(ctx, false, 0, 1))
	assert.Equal(3, agency.Count("agents"))

	fresh := newEnv(t, cfg)
	assert.NoError(fresh.DeleteAgents(ctx))
	assert.Equal(0, agency.Count("agents"))
}

func TestAssertObject(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	sent := map[string]any{
		"schema_id":                     "s1",
		"credential_document_type":      []string{"org.iso.18013.5.1.mDL"},
		"key_proof_types":               map[string]any{"jwt": []string{"EdDSA"}},
		"cryptographic_binding_methods": []string{"did:key"},
	}
	got := &diagency.Resource{Raw: []byte(`{"id":"d1","schema_id":"s1",
		"credential_document_type":["org.iso.18013.5.1.mDL"],
		"key_proof_types":{"jwt":["EdDSA"]},
		"cryptographic_binding_methods":["did:key"],"extra":1}`)}
	assert.NoError(AssertObject(sent, got))
	assert.NoError(AssertNoIndy(got))

	sent["schema_id"] = "s2"
	assert.Error(AssertObject(sent, got))

	indy := &diagency.Resource{Raw: []byte(`{"id":"d2","indy":{"cred_def_id":"x"}}`)}
	assert.Error(AssertNoIndy(indy))
}

func TestHolderNames(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	assert.Equal("holder", HolderKey(0))
	assert.Equal("holder2", HolderKey(2))
	assert.Equal("user_1", HolderUser(0))
	assert.Equal("user_3", HolderUser(2))
}
