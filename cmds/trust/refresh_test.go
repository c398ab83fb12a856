package trust

import (
	"context"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/findy-network/diagency-demo/agent/env"
	"github.com/findy-network/diagency-demo/agent/poll"
	"github.com/findy-network/diagency-demo/cmds"
	"github.com/findy-network/diagency-demo/protocol/trust"
	"github.com/findy-network/diagency-demo/server"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

func TestMain(m *testing.M) {
	try.To(flag.Set("logtostderr", "true"))
	try.To(flag.Set("v", "0"))
	os.Exit(m.Run())
}

func baseCmd(t *testing.T, srv *httptest.Server) cmds.Cmd {
	cfg := env.DefaultConfig()
	cfg.TokenURL = server.TokenURL(srv)
	cfg.AgencyURL = server.APIURL(srv)
	cfg.AdminID = server.TestAdminID
	cfg.AdminSecret = server.TestAdminSecret
	cfg.SecretsFile = filepath.Join(t.TempDir(), "build", "secrets.txt")
	cfg.Poll = poll.Config{Interval: 5 * time.Millisecond, Timeout: 100 * time.Millisecond}
	return cmds.Cmd{Config: cfg}
}

func addRegistry(c cmds.Cmd, endpoint string) string {
	ctx := context.Background()
	e := try.To1(env.New(ctx, c.Config))
	r := try.To1(e.Post(ctx, env.RoleAdmin, trust.RegistriesPath,
		trust.NewVicalRegistry(endpoint), http.StatusCreated))
	return r.ID()
}

func TestRefreshCmd_Validate(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, _ := server.StartTestHTTPServer()
	defer srv.Close()

	c := RefreshCmd{Cmd: baseCmd(t, srv), Every: time.Minute}
	assert.NoError(c.Validate())
	c.Every = 0
	assert.Error(c.Validate())
	c.At = "04:30"
	assert.NoError(c.Validate())
	c.At = "25:00"
	assert.Error(c.Validate())

	c.At = "04:30"
	c.Times = -1
	assert.Error(c.Validate())
	c.At = ""
	c.Every = time.Minute
	assert.Error(c.Validate())
}

func TestRefreshCmd_Run(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, agency := server.StartTestHTTPServer()
	defer srv.Close()

	base := baseCmd(t, srv)
	id1 := addRegistry(base, "https://vical.example.com/1")
	id2 := addRegistry(base, "https://vical.example.com/2")

	c := RefreshCmd{Cmd: base, Every: 10 * time.Millisecond, Times: 2}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r, err := c.Run(ctx, nil)
	assert.NoError(err)
	assert.Equal(r.Runs, 2)
	assert.Equal(agency.Fetches(id1), 2)
	assert.Equal(agency.Fetches(id2), 2)

	c.RegistryIDs = []string{id1}
	c.Times = 1
	_, err = c.Run(ctx, nil)
	assert.NoError(err)
	assert.Equal(agency.Fetches(id1), 3)
	assert.Equal(agency.Fetches(id2), 2)
}

func TestRefreshCmd_Run_Fails(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, _ := server.StartTestHTTPServer()
	defer srv.Close()

	c := RefreshCmd{
		Cmd:         baseCmd(t, srv),
		RegistryIDs: []string{"missing"},
		Every:       10 * time.Millisecond,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := c.Run(ctx, nil)
	assert.Error(err)
	assert.That(diagency.IsStatusError(err))
}

func TestRefreshCmd_Run_Canceled(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, _ := server.StartTestHTTPServer()
	defer srv.Close()

	c := RefreshCmd{Cmd: baseCmd(t, srv), Every: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r, err := c.Run(ctx, nil)
	assert.NoError(err)
	assert.That(r.Runs <= 1)
}

func TestRefreshCmd_Run_CanceledWhileRunning(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, agency := server.StartTestHTTPServer()
	defer srv.Close()

	base := baseCmd(t, srv)
	id := addRegistry(base, "https://vical.example.com/1")

	c := RefreshCmd{Cmd: base, Every: 2 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	r, err := c.Run(ctx, nil)
	assert.NoError(err)
	assert.That(r.Runs >= 1)
	assert.That(r.Fetches[id] >= r.Runs)
	assert.That(agency.Fetches(id) >= r.Fetches[id])
}
