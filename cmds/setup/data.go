package setup

import (
	"github.com/findy-network/diagency-demo/scenario"
)

const (
	DMVAgentName  = "DMVIssuer"
	BankAgentName = "BankVerifier"

	OIDSchemaName    = "oidschema"
	OIDSchemaVersion = "1.0"

	TemplateName = "Identity Verification"

	mdlVocab = "https://iso.org/schemas/mdl"
)

func display(name, locale, logoURI string) []any {
	d := map[string]any{"locale": locale, "name": name}
	if logoURI != "" {
		d["logo"] = map[string]any{"uri": logoURI}
	}
	return []any{d}
}

// IssuerBody returns the DMV issuer agent with its display profile.
func IssuerBody(dmvHost string) map[string]any {
	return map[string]any{
		"id":               "",
		"name":             DMVAgentName,
		"is_did_on_ledger": false,
		"agent_type":       "issuer",
		"did_method":       "did:web",
		"profile": map[string]any{
			"display": display("Department of Motor Vehicles", "en-AU", dmvHost+"/logo.png"),
		},
	}
}

// VerifierBody returns the bank verifier agent. Its profile has the OID4VP
// metadata and the default exchange template.
func VerifierBody(bankHost string) map[string]any {
	algs := []any{-9, -7}
	return map[string]any{
		"id":               "",
		"name":             BankAgentName,
		"is_did_on_ledger": false,
		"agent_type":       "verifier",
		"did_method":       "did:web",
		"profile": map[string]any{
			"verifier": map[string]any{
				"root_of_trust": map[string]any{
					"system_generated": map[string]any{},
				},
				"metadata": map[string]any{
					"response_types": []any{"vp_token"},
					"vp_formats_supported": map[string]any{
						"mso_mdoc": map[string]any{
							"issuerauth_alg_values": algs,
							"deviceauth_alg_values": algs,
						},
					},
				},
				"default_exchange_template": map[string]any{
					"response_mode":                    "direct_post",
					"client_id_prefix":                 "redirect_uri",
					"request_mode":                     "by_value_params",
					"default_authorization_url_scheme": "openid4vp://",
					"ttl":                              120,
				},
			},
			"display": display("Smart Money Bank", "en-AU", bankHost+"/logo.png"),
		},
	}
}

type claim struct {
	id, name, format string
}

var mdlClaims = []claim{
	{"document_number", "Document number", ""},
	{"issue_date", "Issue date", ""},
	{"expiry_date", "Expiry date", ""},
	{"given_name", "Given name(s)", ""},
	{"family_name", "Family name", ""},
	{"birth_date", "Date of birth", "date"},
	{"issuing_authority", "Issuing authority", ""},
	{"resident_address", "Permanent place of residence", ""},
	{"resident_city", "Resident city", ""},
	{"resident_state", "Resident state / province / district", ""},
	{"resident_postal_code", "Resident postal code", ""},
	{"resident_country", "Resident country", ""},
	{"portrait", "Portrait of holder", ""},
}

var requiredClaims = []any{
	"document_number", "issue_date", "expiry_date", "family_name",
	"given_name", "birth_date", "issuing_authority",
}

// SchemaBody returns the OID4VCI JSON schema of the mDL.
func SchemaBody() map[string]any {
	nsID := mdlVocab + "/" + scenario.MdlNamespace
	props := map[string]any{
		"@context": map[string]any{"type": "array"},
	}
	for _, c := range mdlClaims {
		p := map[string]any{
			"$linkedData": map[string]any{
				"identifier": c.id,
				"@id":        nsID + "/" + c.id,
			},
			"$oid4vc": map[string]any{
				"display": display(c.name, "en", ""),
			},
			"type": "string",
		}
		if c.format != "" {
			p["format"] = c.format
		}
		props[c.id] = p
	}

	return map[string]any{
		"name":    OIDSchemaName,
		"version": OIDSchemaVersion,
		"schema": map[string]any{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$linkedData": map[string]any{
				"identifier": scenario.MdlDocType,
				"@id":        mdlVocab,
				"@vocab":     mdlVocab,
				"@type":      scenario.MdlDocType,
			},
			"$oid4vc": map[string]any{
				"display": display("Mobile Drivers Licence", "en", ""),
			},
			"type": "object",
			"properties": map[string]any{
				scenario.MdlNamespace: map[string]any{
					"$linkedData": map[string]any{
						"identifier": scenario.MdlNamespace,
						"@id":        nsID,
					},
					"type":                 "object",
					"properties":           props,
					"required":             requiredClaims,
					"additionalProperties": false,
				},
			},
			"required":             []any{scenario.MdlNamespace},
			"additionalProperties": false,
		},
	}
}

// DefinitionBody returns the mso_mdoc credential definition of the schema.
func DefinitionBody(schemaID string) map[string]any {
	return map[string]any{
		"schema_id":                     schemaID,
		"credential_document_type":      []any{scenario.MdlDocType},
		"credential_format":             "mso_mdoc",
		"credential_signing_algorithm":  "ESP256",
		"cryptographic_binding_methods": []any{"cose_key"},
		"key_proof_types": map[string]any{
			"jwt": []any{"ES256"},
		},
	}
}

var requestedClaims = []string{
	"family_name", "given_name", "birth_date", "resident_address",
	"resident_city", "resident_state", "resident_postal_code",
	"resident_country",
}

// TemplateBody returns the OID4VP exchange template which asks the claims
// of the mDL with a DCQL query.
func TemplateBody() map[string]any {
	claims := make([]any, 0, len(requestedClaims))
	for _, c := range requestedClaims {
		claims = append(claims, map[string]any{
			"path": []any{scenario.MdlNamespace, c},
		})
	}
	return map[string]any{
		"name":        TemplateName,
		"description": "Request for identity verification using mobile drivers license",
		"exchange_template": map[string]any{
			"client_id_prefix":                "redirect_uri",
			"request_mode":                    "by_value_params",
			"exchange_completed_redirect_uri": "uri://completed.redirect",
			"dcql_query": map[string]any{
				"credentials": []any{map[string]any{
					"id":     "mobile_id",
					"format": "mso_mdoc",
					"meta": map[string]any{
						"doctype_value": scenario.MdlDocType,
					},
					"claims": claims,
				}},
			},
		},
	}
}
