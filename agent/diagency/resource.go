package diagency

import (
	"encoding/json"

	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/gjson"
)

// Resource is a response of the agency API. JSON responses are accessed
// with gjson paths, e.g. "local.pairwise.did". Responses to non-JSON
// requests keep only Raw and ContentType.
type Resource struct {
	Status      int
	ContentType string
	Raw         []byte
}

func (r *Resource) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Raw, path)
}

func (r *Resource) ID() string {
	return r.Get("id").String()
}

func (r *Resource) State() string {
	return r.Get("state").String()
}

// Has tells if the top level JSON object has the key.
func (r *Resource) Has(key string) bool {
	found := false
	gjson.ParseBytes(r.Raw).ForEach(func(k, _ gjson.Result) bool {
		found = k.String() == key
		return !found
	})
	return found
}

// Count returns the count of a list response envelope.
func (r *Resource) Count() int64 {
	return r.Get("count").Int()
}

// Items returns the items of a list response envelope.
func (r *Resource) Items() []*Resource {
	items := r.Get("items").Array()
	res := make([]*Resource, 0, len(items))
	for _, item := range items {
		res = append(res, &Resource{
			Status:      r.Status,
			ContentType: r.ContentType,
			Raw:         []byte(item.Raw),
		})
	}
	return res
}

// Map returns the JSON object as a map.
func (r *Resource) Map() (m map[string]any, err error) {
	defer err2.Handle(&err, "resource to map")

	m = make(map[string]any)
	try.To(json.Unmarshal(r.Raw, &m))
	return m, nil
}

// Decode decodes the JSON object to the out struct by its json tags.
// Unknown fields are ignored.
func (r *Resource) Decode(out any) (err error) {
	defer err2.Handle(&err, "decode resource")

	m := try.To1(r.Map())
	dec := try.To1(mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	}))
	try.To(dec.Decode(m))
	return nil
}

func (r *Resource) String() string {
	return string(r.Raw)
}
