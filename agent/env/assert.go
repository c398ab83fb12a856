package env

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/findy-network/diagency-demo/agent/diagency"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// AssertObject checks that every field of sent has the same value in got.
func AssertObject(sent map[string]any, got *diagency.Resource) (err error) {
	defer err2.Handle(&err, "response %s", got.ID())

	m := try.To1(got.Map())
	want := try.To1(normalize(sent))
	for k, v := range want {
		if !reflect.DeepEqual(v, m[k]) {
			return fmt.Errorf("field %q: got %v, want %v", k, m[k], v)
		}
	}
	return nil
}

// AssertNoIndy checks that there is no on-ledger (indy) data in got.
func AssertNoIndy(got *diagency.Resource) error {
	if got.Has("indy") {
		return fmt.Errorf("response %s has indy data", got.ID())
	}
	return nil
}

// normalize gives m the same types a JSON decoded map has.
func normalize(m map[string]any) (n map[string]any, err error) {
	defer err2.Handle(&err)

	data := try.To1(json.Marshal(m))
	n = make(map[string]any)
	try.To(json.Unmarshal(data, &n))
	return n, nil
}
