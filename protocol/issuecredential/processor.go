// Package issuecredential is the credential issuance step of the demo: the
// issuer offers a credential to the holder over an existing connection, and
// the holder accepts it.
package issuecredential

import (
	"context"
	"net/http"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/findy-network/diagency-demo/agent/env"
	"github.com/findy-network/diagency-demo/protocol"
	"github.com/findy-network/diagency-demo/scenario"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	CredentialsPath = "v1.0/diagency/credentials"

	StateOutboundOffer = "outbound_offer"
	StateAccepted      = "accepted"
	StateStored        = "stored"
)

// OfferBody returns the credential offer to the holder's DID.
func OfferBody(s scenario.CredentialScenario, credDefID, toDID string) map[string]any {
	return map[string]any{
		"state":                    StateOutboundOffer,
		"to":                       map[string]any{"did": toDID},
		"attributes":               s.Attributes(),
		"properties":               map[string]any{},
		"credential_definition_id": credDefID,
	}
}

// Offer sends the credential offer from the issuer.
func Offer(
	ctx context.Context,
	a protocol.Agency,
	s scenario.CredentialScenario,
	credDefID, toDID string,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "credential offer")

	return a.Post(ctx, env.RoleIssuer, CredentialsPath, OfferBody(s, credDefID, toDID), http.StatusOK)
}

// Accept accepts the offer as the holder. The credential must be stored
// after it.
func Accept(ctx context.Context, a protocol.Agency, offerID string) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "accept credential %s", offerID)

	r = try.To1(a.Patch(ctx, env.RoleHolder, CredentialsPath+"/"+offerID,
		map[string]any{"state": StateAccepted}, http.StatusOK))
	try.To(env.ExpectState(r, StateStored))
	return r, nil
}

// Issue runs the whole issuance and returns the holder's stored credential.
func Issue(
	ctx context.Context,
	a protocol.Agency,
	s scenario.CredentialScenario,
	credDefID, toDID string,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err)

	offer := try.To1(Offer(ctx, a, s, credDefID, toDID))
	return Accept(ctx, a, offer.ID())
}
