package scenario

const (
	MdlDocType   = "org.iso.18013.5.1.mDL"
	MdlNamespace = "org.iso.18013.5.1"

	AamvaNamespace = "org.iso.18013.5.1.aamva"

	PreviewType = "https://didcomm.org/issue-credential/1.0/credential-preview"
)

// mdlContexts is a JSON-LD representation of some of the minimum required
// attributes for a mDL.
func mdlContexts() map[string]any {
	c := map[string]any{
		"schema": "http://schema.org/",
	}
	for _, e := range []struct{ name, typ string }{
		{"family_name", "schema:Text"},
		{"given_name", "schema:Text"},
		{"birth_date", "schema:Date"},
		{"issue_date", "schema:Date"},
		{"expiry_date", "schema:Date"},
		{"issuing_country", "schema:Text"},
		{"issuing_authority", "schema:Text"},
		{"document_number", "schema:Text"},
		{"portrait", "schema:ImageObject"},
		{"driving_privileges", "schema:ItemList"},
		{"un_distinguishing_sign", "schema:Text"},
	} {
		addContext(c, MdlNamespace, e.name, e.typ)
	}
	return c
}

func addContext(c map[string]any, ns, name, typ string) {
	id := ns + ":" + name
	c[id] = map[string]any{
		"@id":   id,
		"@type": typ,
	}
}

func drivingPrivileges() []any {
	return []any{
		map[string]any{
			"vehicle_category_code": "A",
			"issue_date":            "2024-01-01",
			"expiry_date":           "2029-01-01",
		},
	}
}

func mdlAttributes() map[string]any {
	return map[string]any{
		"org.iso.18013.5.1:family_name":            "Smith",
		"org.iso.18013.5.1:given_name":             "John",
		"org.iso.18013.5.1:birth_date":             "1980-01-01",
		"org.iso.18013.5.1:issue_date":             "2024-01-01",
		"org.iso.18013.5.1:expiry_date":            "2029-01-01",
		"org.iso.18013.5.1:issuing_country":        "US",
		"org.iso.18013.5.1:issuing_authority":      "IBM Department of Transport",
		"org.iso.18013.5.1:document_number":        "123456789",
		"org.iso.18013.5.1:portrait":               []any{0x01, 0x02},
		"org.iso.18013.5.1:driving_privileges":     drivingPrivileges(),
		"org.iso.18013.5.1:un_distinguishing_sign": "US",
	}
}

// mdlPreview is the DIDComm issue-credential preview of the mDL. The JSON
// values have a mime-type and they are sent as is, not base64url encoded.
func mdlPreview() map[string]any {
	attr := func(name string, value any) map[string]any {
		return map[string]any{"name": MdlNamespace + ":" + name, "value": value}
	}
	jsonAttr := func(name string, value any) map[string]any {
		a := attr(name, value)
		a["mime-type"] = "application/json"
		return a
	}
	return map[string]any{
		"@type": PreviewType,
		"attributes": []any{
			attr("family_name", "Smith"),
			attr("given_name", "John"),
			attr("birth_date", "1980-01-01"),
			attr("issue_date", "2024-01-01"),
			attr("expiry_date", "2029-01-01"),
			attr("issuing_country", "US"),
			attr("issuing_authority", "IBM Department of Transport"),
			attr("document_number", "123456789"),
			jsonAttr("portrait", []any{0x01, 0x02}),
			jsonAttr("driving_privileges", drivingPrivileges()),
			attr("un_distinguishing_sign", "US"),
		},
	}
}

// addAamvaContexts adds the AAMVA extension of the mDL to the contexts c.
func addAamvaContexts(c map[string]any) {
	for _, e := range []struct{ name, typ string }{
		{"domestic_driving_privileges", "schema:Thing"},
		{"family_name_truncation", "schema:Text"},
		{"given_name_truncation", "schema:Text"},
		{"sex", "schema:Number"},
		{"DHS_compliance", "schema:Text"},
	} {
		addContext(c, AamvaNamespace, e.name, e.typ)
	}
}

func aamvaAttributes() map[string]any {
	return map[string]any{
		AamvaNamespace + ":domestic_driving_privileges": map[string]any{
			"domestic_vehicle_class": map[string]any{
				"domestic_vehicle_class_code":        "D",
				"domestic_vehicle_class_description": "Sedan < 12,000 lb.",
			},
		},
		AamvaNamespace + ":family_name_truncation": "N",
		AamvaNamespace + ":given_name_truncation":  "N",
		AamvaNamespace + ":sex":                    1,
		AamvaNamespace + ":DHS_compliance":         "N",
	}
}

func aamvaPreview() map[string]any {
	return map[string]any{
		"@type": PreviewType,
		"attributes": []any{
			map[string]any{
				"name":  AamvaNamespace + ":DHS_compliance",
				"value": "N",
			},
		},
	}
}
