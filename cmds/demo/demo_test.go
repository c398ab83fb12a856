package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/findy-network/diagency-demo/agent/env"
	"github.com/findy-network/diagency-demo/agent/poll"
	"github.com/findy-network/diagency-demo/cmds"
	"github.com/findy-network/diagency-demo/scenario"
	"github.com/findy-network/diagency-demo/server"
	"github.com/lainio/err2/assert"
	"github.com/lainio/err2/try"
)

func TestMain(m *testing.M) {
	try.To(flag.Set("logtostderr", "true"))
	try.To(flag.Set("v", "0"))
	os.Exit(m.Run())
}

func newCmd(t *testing.T, srv *httptest.Server, name string) Cmd {
	cfg := env.DefaultConfig()
	cfg.TokenURL = server.TokenURL(srv)
	cfg.AgencyURL = server.APIURL(srv)
	cfg.AdminID = server.TestAdminID
	cfg.AdminSecret = server.TestAdminSecret
	cfg.SecretsFile = filepath.Join(t.TempDir(), "build", "agents_and_client_secrets.txt")
	cfg.Poll = poll.Config{Interval: 5 * time.Millisecond, Timeout: 200 * time.Millisecond}
	cfg.Timeout = 5 * time.Second
	return Cmd{
		Cmd:          cmds.Cmd{Config: cfg},
		Scenario:     name,
		Issuance:     true,
		Verification: true,
	}
}

func TestCmd_Validate(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, _ := server.StartTestHTTPServer()
	defer srv.Close()

	c := newCmd(t, srv, scenario.NameMdocMdl)
	assert.NoError(c.Validate())

	c.Scenario = "mdoc_unknown"
	assert.Error(c.Validate())

	c = newCmd(t, srv, scenario.NameMdocMdl)
	c.Issuance, c.Verification = false, false
	assert.Error(c.Validate())
	c.DeleteAgents = true
	assert.NoError(c.Validate())
}

type badDisclosure struct {
	*scenario.Mdoc
}

func (badDisclosure) DisclosureField() string {
	return "$['org.iso.18013.5.1']['no_such_element']"
}

func TestCmd_Validate_BadDisclosure(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, agency := server.StartTestHTTPServer()
	defer srv.Close()

	defer func(f func(string) (scenario.CredentialScenario, error)) {
		lookupScenario = f
	}(lookupScenario)
	lookupScenario = func(string) (scenario.CredentialScenario, error) {
		return badDisclosure{scenario.MdocMdl()}, nil
	}

	c := newCmd(t, srv, scenario.NameMdocMdl)
	err := c.Validate()
	assert.Error(err)
	assert.That(strings.Contains(err.Error(), "no_such_element"))

	_, err = c.Run(context.Background(), nil)
	assert.Error(err)
	assert.Equal(agency.Count("agents"), 0)
}

func TestCmd_Run(t *testing.T) {
	for _, name := range scenario.Names() {
		t.Run(name, func(t *testing.T) {
			assert.PushTester(t)
			defer assert.PopTester()

			srv, agency := server.StartTestHTTPServer()
			defer srv.Close()

			var out bytes.Buffer
			c := newCmd(t, srv, name)
			r, err := c.Run(context.Background(), &out)
			assert.NoError(err)

			assert.That(r.SchemaID != "")
			assert.That(r.DefinitionID != "")
			assert.That(r.CredentialID != "")
			assert.That(r.VerificationID != "")
			assert.Equal(r.ProofSchemaID, "")
			assert.Equal(len(r.Steps), 4)

			assert.Equal(agency.Resource("credentials", r.CredentialID)["state"], "stored")
			assert.Equal(agency.Resource("verifications", r.VerificationID)["state"], scenario.StatePassed)
			assert.Equal(agency.Count("trusted_issuing_authorities"), 1)
			assert.Equal(agency.Count("connections"), 4)

			s := out.String()
			assert.That(strings.HasPrefix(s, "Running "+name+" demonstration with flags issuance=true verification=true deleteAgents=false\n"))
			assert.That(strings.Contains(s, "Demonstration summary ("+name+"):"))
			assert.That(strings.Contains(s, "Agent client secrets are available at "+c.SecretsFile))
			assert.That(strings.Contains(s, "was issued a credential with id "+r.CredentialID))
			assert.That(strings.Contains(s, "The associated verification's id was "+r.VerificationID))

			data, err := r.JSON()
			assert.NoError(err)
			var m map[string]any
			assert.NoError(json.Unmarshal(data, &m))
			assert.Equal(m["scenario"], any(name))
		})
	}
}

func TestCmd_Run_Twice(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, agency := server.StartTestHTTPServer()
	defer srv.Close()

	c := newCmd(t, srv, scenario.NameMdocMdl)
	first, err := c.Run(context.Background(), nil)
	assert.NoError(err)
	second, err := c.Run(context.Background(), nil)
	assert.NoError(err)

	assert.Equal(second.SchemaID, first.SchemaID)
	assert.Equal(second.DefinitionID, first.DefinitionID)
	assert.Equal(second.IssuerID, first.IssuerID)
	assert.Equal(agency.Count("credential_schemas"), 1)
	assert.Equal(agency.Count("credential_definitions"), 1)
	assert.NotEqual(second.CredentialID, first.CredentialID)
}

func TestCmd_Run_IssuanceOnly(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, agency := server.StartTestHTTPServer()
	defer srv.Close()

	var out bytes.Buffer
	c := newCmd(t, srv, scenario.NameMdocMdl)
	c.Verification = false
	r, err := c.Run(context.Background(), &out)
	assert.NoError(err)
	assert.Equal(r.VerificationID, "")
	assert.Equal(agency.Count("verifications"), 0)
	assert.That(!strings.Contains(out.String(), "Performed credential verification"))
}

func TestCmd_Run_VerificationFails(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, agency := server.StartTestHTTPServer()
	defer srv.Close()
	agency.VerificationResult = scenario.StateFailed

	_, err := newCmd(t, srv, scenario.NameMdocMdl).Run(context.Background(), nil)
	assert.Error(err)
	assert.That(errors.Is(err, env.ErrUnexpectedState))
}

func TestCmd_Run_DeleteAgents(t *testing.T) {
	assert.PushTester(t)
	defer assert.PopTester()

	srv, agency := server.StartTestHTTPServer()
	defer srv.Close()

	c := newCmd(t, srv, scenario.NameMdocMdl)
	_, err := c.Run(context.Background(), nil)
	assert.NoError(err)
	assert.That(agency.Count("agents") > 0)

	var out bytes.Buffer
	c.DeleteAgents = true
	r, err := c.Run(context.Background(), &out)
	assert.NoError(err)
	assert.That(r.Deleted)
	assert.Equal(agency.Count("agents"), 0)
	assert.That(strings.Contains(out.String(), "Deleted all agents and associated data. Exiting..."))

	_, err = os.Stat(filepath.Dir(c.SecretsFile))
	assert.That(os.IsNotExist(err))
}
