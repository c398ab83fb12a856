/*
Package scenario defines the credential types the demo can issue and verify.
A scenario is a configuration value: the document type, the JSON-LD schema,
the credential attributes and the selective disclosure path of the proof
request.
*/
package scenario

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

const (
	NameMdocMdl      = "mdoc_mdl"
	NameMdocMdlAamva = "mdoc_mdl_aamva"

	StatePassed = "passed"
	StateFailed = "failed"
)

// CredentialScenario is the credential type of one demo run.
type CredentialScenario interface {
	Name() string
	DocType() string
	ShortName() string

	// Schema returns the JSON-LD contexts of the credential schema.
	Schema() map[string]any
	Attributes() map[string]any
	AttributePreview() map[string]any
	DisclosureField() string

	ProofRequest(schemaName, schemaVersion string) ProofRequest
	TrustedIssuingAuthorities(certificate string) []TrustedIssuingAuthority

	// ProofSchemaRequestedAttributes returns the attributes of the proof
	// schema. Empty means that the format doesn't use proof schemas.
	ProofSchemaRequestedAttributes() map[string]any
	HyperledgerRequired() bool
	ExpectedVerificationState() string
}

// Mdoc is a mso_mdoc credential scenario. All of the getters return copies,
// the caller can modify them freely.
type Mdoc struct {
	name       string
	shortName  string
	docType    string
	disclosure string
	schema     map[string]any
	attributes map[string]any
	preview    map[string]any
}

// MdocMdl returns the mobile driver's license scenario.
func MdocMdl() *Mdoc {
	return &Mdoc{
		name:       NameMdocMdl,
		shortName:  "Mobile Driver's License",
		docType:    MdlDocType,
		disclosure: "$['org.iso.18013.5.1']['driving_privileges']",
		schema:     mdlContexts(),
		attributes: mdlAttributes(),
		preview:    mdlPreview(),
	}
}

// MdocMdlAamva returns the USA mobile driver's license scenario. It extends
// copies of the mDL schema and attributes with the AAMVA fields.
func MdocMdlAamva() *Mdoc {
	base := MdocMdl()

	schema := base.Schema()
	addAamvaContexts(schema)

	attributes := base.Attributes()
	for k, v := range aamvaAttributes() {
		attributes[k] = v
	}

	return &Mdoc{
		name:       NameMdocMdlAamva,
		shortName:  "USA Mobile Driver's License",
		docType:    base.docType,
		disclosure: "$['org.iso.18013.5.1.aamva']['DHS_compliance']",
		schema:     schema,
		attributes: attributes,
		preview:    aamvaPreview(),
	}
}

func (m *Mdoc) Name() string            { return m.name }
func (m *Mdoc) DocType() string         { return m.docType }
func (m *Mdoc) ShortName() string       { return m.shortName }
func (m *Mdoc) DisclosureField() string { return m.disclosure }

func (m *Mdoc) Schema() map[string]any           { return copyMap(m.schema) }
func (m *Mdoc) Attributes() map[string]any       { return copyMap(m.attributes) }
func (m *Mdoc) AttributePreview() map[string]any { return copyMap(m.preview) }

func (m *Mdoc) ProofRequest(schemaName, schemaVersion string) ProofRequest {
	return ProofRequest{
		Name:    schemaName,
		Version: schemaVersion,
		MsoMdoc: MsoMdocProof{
			PresentationDefinition: PresentationDefinition{
				ID: uuid.New().String(),
				InputDescriptors: []InputDescriptor{{
					ID: m.docType,
					Format: Format{MsoMdoc: MsoMdocFormat{
						Alg: []string{"EdDSA", "ES256"},
					}},
					Name:    fmt.Sprintf("%s Card", m.shortName),
					Purpose: fmt.Sprintf("Must have a valid %s card", m.shortName),
					Constraints: Constraints{
						LimitDisclosure: "required",
						Fields: []PathField{{
							Path:           []string{m.disclosure},
							IntentToRetain: false,
						}},
					},
				}},
			},
		},
	}
}

func (m *Mdoc) TrustedIssuingAuthorities(certificate string) []TrustedIssuingAuthority {
	return []TrustedIssuingAuthority{{
		CredentialDocumentType: m.docType,
		Certificate:            certificate,
	}}
}

func (m *Mdoc) ProofSchemaRequestedAttributes() map[string]any {
	return map[string]any{}
}

func (m *Mdoc) HyperledgerRequired() bool {
	return false
}

func (m *Mdoc) ExpectedVerificationState() string {
	return StatePassed
}

var registry = map[string]func() CredentialScenario{
	NameMdocMdl:      func() CredentialScenario { return MdocMdl() },
	NameMdocMdlAamva: func() CredentialScenario { return MdocMdlAamva() },
}

// Get returns the scenario by its command line name.
func Get(name string) (CredentialScenario, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q, use one of %v", name, Names())
	}
	return f(), nil
}

// Names returns the names of the scenarios, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = copyValue(v)
	}
	return c
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = copyValue(e)
		}
		return c
	case []string:
		return append([]string(nil), t...)
	}
	return v
}
