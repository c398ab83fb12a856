/*
Package credschema creates the credential schemas, credential definitions and
proof schemas of the demo. All of them are looked up first, and created only
when missing, so repeated runs reuse the earlier ones.
*/
package credschema

import (
	"context"
	"net/http"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/findy-network/diagency-demo/agent/env"
	"github.com/findy-network/diagency-demo/protocol"
	"github.com/findy-network/diagency-demo/scenario"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	SchemasPath      = "v2.0/diagency/credential_schemas"
	DefinitionsPath  = "v2.0/diagency/credential_definitions"
	ProofSchemasPath = "v1.0/diagency/proof_schemas"

	SchemaVersion = "4.2"
)

// SchemaBody returns the request body of the scenario's credential schema.
func SchemaBody(s scenario.CredentialScenario) map[string]any {
	return map[string]any{
		"name":    s.ShortName(),
		"version": SchemaVersion,
		"contexts": map[string]any{
			"@context": s.Schema(),
		},
	}
}

// CreateSchema returns the issuer's credential schema of the scenario. The
// schema is looked up by its name first.
func CreateSchema(
	ctx context.Context,
	a protocol.Agency,
	s scenario.CredentialScenario,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "credential schema")

	existing := try.To1(a.GetIfResourceExists(ctx, env.RoleIssuer, SchemasPath,
		map[string]string{"name": s.ShortName()}))
	if existing != nil {
		glog.V(1).Infof("Using existing schema with id %s...", existing.ID())
		return existing, nil
	}
	return a.Post(ctx, env.RoleIssuer, SchemasPath, SchemaBody(s), http.StatusCreated)
}

// DefinitionBody returns the request body of the mso_mdoc credential
// definition.
func DefinitionBody(s scenario.CredentialScenario, schemaID string) map[string]any {
	return map[string]any{
		"schema_id":                     schemaID,
		"credential_document_type":      []string{s.DocType()},
		"credential_format":             "mso_mdoc",
		"cryptographic_binding_methods": []string{"did:key"},
		"key_proof_types": map[string]any{
			"jwt": []string{"EdDSA"},
		},
		"credential_signing_algorithm": "EdDSA",
	}
}

// CreateDefinition returns the credential definition of the schema. It's
// looked up by the schema id first. A created definition must echo the
// submitted fields and it must not have any on-ledger data.
func CreateDefinition(
	ctx context.Context,
	a protocol.Agency,
	s scenario.CredentialScenario,
	schemaID string,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "credential definition")

	existing := try.To1(a.GetIfResourceExists(ctx, env.RoleIssuer, DefinitionsPath,
		map[string]string{"schema.id": schemaID}))
	if existing != nil {
		glog.V(1).Infof("Using existing cred def with id %s...", existing.ID())
		return existing, nil
	}

	body := DefinitionBody(s, schemaID)
	r = try.To1(a.Post(ctx, env.RoleIssuer, DefinitionsPath, body, http.StatusCreated))
	try.To(env.AssertObject(body, r))
	try.To(env.AssertNoIndy(r))
	return r, nil
}

// CreateProofSchema creates the verifier's proof schema when the scenario
// requests attributes with it. Otherwise nil is returned.
func CreateProofSchema(
	ctx context.Context,
	a protocol.Agency,
	s scenario.CredentialScenario,
	schema *diagency.Resource,
) (r *diagency.Resource, err error) {
	defer err2.Handle(&err, "proof schema")

	attrs := s.ProofSchemaRequestedAttributes()
	if len(attrs) == 0 {
		glog.V(1).Infoln("This credential format doesn't require proof schemas")
		return nil, nil
	}
	return a.Post(ctx, env.RoleVerifier, ProofSchemasPath, map[string]any{
		"name":                 schema.Get("name").String(),
		"version":              schema.Get("version").String(),
		"requested_attributes": attrs,
		"requested_predicates": map[string]any{},
	}, http.StatusOK)
}
