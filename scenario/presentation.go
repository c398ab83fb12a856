package scenario

// Presentation exchange types of the mso_mdoc proof request, see
// https://identity.foundation/presentation-exchange/spec/v2.0.0/

type ProofRequest struct {
	Name    string       `json:"name"`
	Version string       `json:"version"`
	MsoMdoc MsoMdocProof `json:"mso_mdoc"`
}

type MsoMdocProof struct {
	PresentationDefinition PresentationDefinition `json:"presentation_definition"`
}

type PresentationDefinition struct {
	ID               string            `json:"id"`
	InputDescriptors []InputDescriptor `json:"input_descriptors"`
}

type InputDescriptor struct {
	ID          string      `json:"id"`
	Format      Format      `json:"format"`
	Name        string      `json:"name"`
	Purpose     string      `json:"purpose"`
	Constraints Constraints `json:"constraints"`
}

type Format struct {
	MsoMdoc MsoMdocFormat `json:"mso_mdoc"`
}

type MsoMdocFormat struct {
	Alg []string `json:"alg"`
}

type Constraints struct {
	LimitDisclosure string      `json:"limit_disclosure,omitempty"`
	Fields          []PathField `json:"fields,omitempty"`
}

type PathField struct {
	Path           []string `json:"path"`
	IntentToRetain bool     `json:"intent_to_retain"`
}

// TrustedIssuingAuthority is an entry of the verifier's allow list of issuer
// certificates.
type TrustedIssuingAuthority struct {
	CredentialDocumentType string `json:"credential_document_type"`
	Certificate            string `json:"certificate"`
}
