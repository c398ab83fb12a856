package scenario

import (
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Document returns the attributes as the namespaced credential document the
// holder presents: {"<namespace>": {"<element>": value}}.
func Document(attributes map[string]any) map[string]any {
	doc := make(map[string]any)
	for k, v := range attributes {
		ns, element, found := strings.Cut(k, ":")
		if !found {
			continue
		}
		nsDoc, ok := doc[ns].(map[string]any)
		if !ok {
			nsDoc = make(map[string]any)
			doc[ns] = nsDoc
		}
		nsDoc[element] = copyValue(v)
	}
	return doc
}

// Validate checks that the scenario is consistent: the disclosure path of
// the proof request points to an attribute of the credential, and every
// attribute is in the schema.
func Validate(s CredentialScenario) error {
	attrs := s.Attributes()
	v, err := jsonpath.Get(s.DisclosureField(), Document(attrs))
	if err != nil {
		return fmt.Errorf("scenario %s: disclosure field %s: %w",
			s.Name(), s.DisclosureField(), err)
	}
	if v == nil {
		return fmt.Errorf("scenario %s: disclosure field %s is empty",
			s.Name(), s.DisclosureField())
	}
	schema := s.Schema()
	for k := range attrs {
		if _, ok := schema[k]; !ok {
			return fmt.Errorf("scenario %s: attribute %s is not in the schema",
				s.Name(), k)
		}
	}
	return nil
}
