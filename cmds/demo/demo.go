/*
Package demo is the scenario executor. It sets up the agents of the demo,
connects the holder to the issuer and the verifier, creates the credential
schema and definition, and runs the issuance and the verification of the
selected credential scenario. The run ends with a summary of what was done.
*/
package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/findy-network/diagency-demo/agent/env"
	"github.com/findy-network/diagency-demo/cmds"
	"github.com/findy-network/diagency-demo/protocol/credschema"
	"github.com/findy-network/diagency-demo/protocol/issuecredential"
	"github.com/findy-network/diagency-demo/protocol/presentproof"
	"github.com/findy-network/diagency-demo/protocol/trust"
	"github.com/findy-network/diagency-demo/scenario"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

type Cmd struct {
	cmds.Cmd

	Scenario     string
	Issuance     bool
	Verification bool
	DeleteAgents bool
}

func (c Cmd) Validate() error {
	if err := c.Cmd.Validate(); err != nil {
		return err
	}
	if _, err := scenarioOf(c.Scenario); err != nil {
		return err
	}
	if !c.DeleteAgents && !c.Issuance && !c.Verification {
		return errors.New("nothing to do, enable issuance or verification")
	}
	return nil
}

var lookupScenario = scenario.Get

// scenarioOf returns the named scenario if its disclosure path and
// attributes are consistent.
func scenarioOf(name string) (scenario.CredentialScenario, error) {
	s, err := lookupScenario(name)
	if err != nil {
		return nil, err
	}
	if err := scenario.Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Step is a timed step of the run.
type Step struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

type Result struct {
	Scenario       string `json:"scenario"`
	Deleted        bool   `json:"deleted,omitempty"`
	SecretsFile    string `json:"secrets_file,omitempty"`
	SchemaID       string `json:"schema_id,omitempty"`
	DefinitionID   string `json:"definition_id,omitempty"`
	ProofSchemaID  string `json:"proof_schema_id,omitempty"`
	IssuerID       string `json:"issuer_id,omitempty"`
	VerifierID     string `json:"verifier_id,omitempty"`
	HolderID       string `json:"holder_id,omitempty"`
	CredentialID   string `json:"credential_id,omitempty"`
	VerificationID string `json:"verification_id,omitempty"`
	Steps          []Step `json:"steps,omitempty"`
}

func (r Result) JSON() ([]byte, error) {
	return json.Marshal(r)
}

func (c Cmd) Exec(w io.Writer) (r cmds.Result, err error) {
	res, err := c.Run(context.Background(), w)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Run executes the demo. Any failing step stops the run.
func (c Cmd) Run(ctx context.Context, w io.Writer) (r *Result, err error) {
	defer err2.Handle(&err, "%s demonstration", c.Scenario)

	s := try.To1(scenarioOf(c.Scenario))
	r = &Result{Scenario: s.Name()}
	cmds.Fprintf(w, "Running %s demonstration with flags issuance=%v verification=%v deleteAgents=%v\n",
		s.Name(), c.Issuance, c.Verification, c.DeleteAgents)

	e := try.To1(env.New(ctx, c.Config))
	r.SecretsFile = e.Secrets().Filename()

	if c.DeleteAgents {
		try.To(e.Cleanup(ctx))
		r.Deleted = true
		cmds.Fprintln(w, "Deleted all agents and associated data. Exiting...")
		return r, nil
	}

	timed := func(name string, f func() error) {
		start := time.Now()
		try.To(f())
		d := time.Since(start)
		r.Steps = append(r.Steps, Step{Name: name, Duration: d})
		glog.V(1).Infof("step %s done in %v", name, d)
	}

	var toIssuer, toVerifier *env.Connection
	timed("agents", func() error {
		return e.SetupAgentsAndTokens(ctx, s.HyperledgerRequired(), 0, 1)
	})
	timed("connections", func() (err error) {
		defer err2.Handle(&err)
		toIssuer = try.To1(e.ConnectHolderTo(ctx, env.RoleIssuer))
		toVerifier = try.To1(e.ConnectHolderTo(ctx, env.RoleVerifier))
		return nil
	})
	r.IssuerID = try.To1(e.Agent(env.RoleIssuer)).ID
	r.VerifierID = try.To1(e.Agent(env.RoleVerifier)).ID
	r.HolderID = try.To1(e.Agent(env.RoleHolder)).ID

	schema := try.To1(credschema.CreateSchema(ctx, e, s))
	r.SchemaID = schema.ID()
	credDef := try.To1(credschema.CreateDefinition(ctx, e, s, schema.ID()))
	r.DefinitionID = credDef.ID()
	if ps := try.To1(credschema.CreateProofSchema(ctx, e, s, schema)); ps != nil {
		r.ProofSchemaID = ps.ID()
	}
	try.To1(trust.ConfigureTrustedIssuingAuthorities(ctx, e, s, credDef))

	if c.Issuance {
		timed("issuance", func() (err error) {
			defer err2.Handle(&err)
			cred := try.To1(issuecredential.Issue(ctx, e, s, credDef.ID(), toIssuer.LocalDID))
			r.CredentialID = cred.ID()
			return nil
		})
	}
	if c.Verification {
		timed("verification", func() (err error) {
			defer err2.Handle(&err)
			ver := try.To1(presentproof.Verify(ctx, e, s, schema, toVerifier.LocalDID))
			r.VerificationID = ver.ID()
			return nil
		})
	}

	c.printSummary(w, r)
	return r, nil
}

func (c Cmd) printSummary(w io.Writer, r *Result) {
	cmds.Fprintf(w, "\nDemonstration summary (%s):\n", r.Scenario)
	cmds.Fprintln(w, "===================================")
	cmds.Fprintln(w, "Agent client secrets are available at", r.SecretsFile)
	cmds.Fprintln(w, "Used credential schema with id", r.SchemaID)
	cmds.Fprintln(w, "Used credential definition with id", r.DefinitionID)
	if c.Issuance {
		cmds.Fprintf(w, "Performed credential issuance:\n"+
			"\t |_ Issuer agent with id %s offered a credential to holder agent id %s\n"+
			"\t |_ The holder accepted the offer and was issued a credential with id %s\n",
			r.IssuerID, r.HolderID, r.CredentialID)
	}
	if c.Verification {
		cmds.Fprintf(w, "Performed credential verification:\n"+
			"\t |_ Verifier agent with id %s requested a proof from holder agent id %s\n"+
			"\t |_ The holder generated and presented a valid proof. The associated verification's id was %s\n",
			r.VerifierID, r.HolderID, r.VerificationID)
	}
	if len(r.Steps) > 0 {
		cmds.Fprintln(w, "Step timings:")
		for _, st := range r.Steps {
			cmds.Fprintln(w, fmt.Sprintf("\t %-13s %v", st.Name, st.Duration.Round(time.Millisecond)))
		}
	}
}
