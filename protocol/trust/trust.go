/*
Package trust configures which issuers the verifier trusts. The trusted
issuing authorities are set directly with the issuer's certificate, and the
remote trust registries (VICAL) are registered and fetched by the agency.
*/
package trust

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/findy-network/diagency-demo/agent/env"
	"github.com/findy-network/diagency-demo/protocol"
	"github.com/findy-network/diagency-demo/scenario"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	AuthoritiesPath = "v1.0/diagency/trusted_issuing_authorities"
	RegistriesPath  = "v1.0/diagency/trust/remote_providers/registries"

	certificatePath = "mso_mdoc.certificate"
)

// Certificate returns the mso_mdoc signing certificate of the credential
// definition, or the issuer agent's if the definition has none.
func Certificate(credDef *diagency.Resource, issuer *env.Agent) string {
	if credDef != nil {
		if c := credDef.Get(certificatePath).String(); c != "" {
			return c
		}
	}
	if issuer != nil && issuer.Raw != nil {
		return issuer.Raw.Get(certificatePath).String()
	}
	return ""
}

// ConfigureTrustedIssuingAuthorities adds the scenario's issuing authorities
// to the verifier's allow list. Without a certificate there is nothing to
// trust, which is only logged.
func ConfigureTrustedIssuingAuthorities(
	ctx context.Context,
	a protocol.Agency,
	s scenario.CredentialScenario,
	credDef *diagency.Resource,
) (rs []*diagency.Resource, err error) {
	defer err2.Handle(&err, "trusted issuing authorities")

	issuer := try.To1(a.Agent(env.RoleIssuer))
	cert := Certificate(credDef, issuer)
	if cert == "" {
		glog.Warningf("no mso_mdoc certificate for issuer %s, trust not configured", issuer.ID)
		return nil, nil
	}
	for _, tia := range s.TrustedIssuingAuthorities(cert) {
		r := try.To1(a.Post(ctx, env.RoleVerifier, AuthoritiesPath, tia, http.StatusCreated))
		rs = append(rs, r)
	}
	return rs, nil
}

// Registry is a remote trust registry of the agency.
type Registry struct {
	Name         string `json:"name"`
	Activated    bool   `json:"activated"`
	Endpoint     string `json:"endpoint"`
	RegistryType string `json:"registryType"`
	EntityType   string `json:"entityType"`
}

// NewVicalRegistry returns an activated VICAL registry of issuers.
func NewVicalRegistry(endpoint string) Registry {
	return Registry{
		Name:         "string",
		Activated:    true,
		Endpoint:     endpoint,
		RegistryType: "vical",
		EntityType:   "issuer",
	}
}

// VicalURL returns the URL of the issuer's VICAL.
func VicalURL(vicalBaseURL, issuerID string) string {
	return fmt.Sprintf("%s/v1.0/diagency/trust/anchor/%s/vical",
		strings.TrimSuffix(vicalBaseURL, "/"), issuerID)
}

// RegisterRegistry adds the remote registry to the agency and fetches its
// data right away.
func RegisterRegistry(
	ctx context.Context,
	a protocol.Agency,
	role string,
	reg Registry,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "register trust registry %s", reg.Endpoint)

	r = try.To1(a.Post(ctx, role, RegistriesPath, reg, diagency.AnySuccess))
	glog.V(1).Infoln("Successfully created trust registry:", r.ID())
	try.To1(FetchRegistry(ctx, a, role, r.ID()))
	return r, nil
}

// FetchRegistry tells the agency to pull the remote registry's data.
func FetchRegistry(
	ctx context.Context,
	a protocol.Agency,
	role, registryID string,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "fetch trust registry %s", registryID)

	r = try.To1(a.Post(ctx, role, RegistriesPath+"/"+registryID+"/fetch", nil, diagency.AnySuccess))
	glog.V(1).Infoln("Successfully fetched registry data:", registryID)
	return r, nil
}
