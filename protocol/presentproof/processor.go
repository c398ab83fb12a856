// Package presentproof is the proof presentation step of the demo: the
// verifier requests a proof, and the holder generates and shares it.
package presentproof

import (
	"context"
	"fmt"
	"net/http"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/findy-network/diagency-demo/agent/env"
	"github.com/findy-network/diagency-demo/protocol"
	"github.com/findy-network/diagency-demo/scenario"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	VerificationsPath = "v1.0/diagency/verifications"

	StateOutboundProofRequest = "outbound_proof_request"
	StateProofGenerated       = "proof_generated"
	StateProofShared          = "proof_shared"
)

// RequestBody returns the proof request to the holder's DID. An empty DID
// leaves the request unaddressed.
func RequestBody(s scenario.CredentialScenario, schema *diagency.Resource, toDID string) map[string]any {
	body := map[string]any{
		"state":      StateOutboundProofRequest,
		"properties": map[string]any{},
		"proof_request": s.ProofRequest(
			schema.Get("name").String(),
			schema.Get("version").String()),
	}
	if toDID != "" {
		body["to"] = map[string]any{"did": toDID}
	}
	return body
}

func path(id string) string {
	return VerificationsPath + "/" + id
}

// Request sends the proof request from the verifier.
func Request(
	ctx context.Context,
	a protocol.Agency,
	s scenario.CredentialScenario,
	schema *diagency.Resource,
	toDID string,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "proof request")

	return a.Post(ctx, env.RoleVerifier, VerificationsPath, RequestBody(s, schema, toDID), http.StatusOK)
}

// Generate asks the holder's agent to generate the proof, and waits until
// it's generated. The holder must see what's going to be shared.
func Generate(ctx context.Context, a protocol.Agency, id string) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "generate proof %s", id)

	try.To1(a.Patch(ctx, env.RoleHolder, path(id),
		map[string]any{"state": StateProofGenerated}, http.StatusOK))
	r = try.To1(a.WaitForState(ctx, env.RoleHolder, path(id), StateProofGenerated))
	if !r.Has("info") {
		return nil, fmt.Errorf("generated proof %s has no info", id)
	}
	return r, nil
}

// Share shares the generated proof with the verifier.
func Share(ctx context.Context, a protocol.Agency, id string) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "share proof %s", id)

	return a.Patch(ctx, env.RoleHolder, path(id),
		map[string]any{"state": StateProofShared}, http.StatusOK)
}

// WaitResult waits until the verification is passed or failed on the role's
// side, and checks it against the expected state.
func WaitResult(
	ctx context.Context,
	a protocol.Agency,
	role, id, expected string,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "verification result of %s", role)

	r = try.To1(a.WaitForState(ctx, role, path(id), scenario.StatePassed, scenario.StateFailed))
	try.To(env.ExpectState(r, expected))
	return r, nil
}

// Verify runs the whole verification and returns the verifier's side of it.
func Verify(
	ctx context.Context,
	a protocol.Agency,
	s scenario.CredentialScenario,
	schema *diagency.Resource,
	toDID string,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err)

	req := try.To1(Request(ctx, a, s, schema, toDID))
	id := req.ID()
	try.To1(Generate(ctx, a, id))
	try.To1(Share(ctx, a, id))
	try.To1(WaitResult(ctx, a, env.RoleHolder, id, s.ExpectedVerificationState()))
	return WaitResult(ctx, a, env.RoleVerifier, id, s.ExpectedVerificationState())
}
