package server

import (
	"encoding/json"
	"fmt"
	"strings"
)

type object = map[string]any

// store keeps the resources of one kind in the creation order. The owner is
// the principal (agent id) whose token created the resource.
type store struct {
	order  []string
	items  map[string]object
	owners map[string]string
}

func newStore() *store {
	return &store{
		items:  make(map[string]object),
		owners: make(map[string]string),
	}
}

func (s *store) put(owner string, o object) {
	id := fmt.Sprint(o["id"])
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = o
	s.owners[id] = owner
}

func (s *store) get(id string) (object, bool) {
	o, ok := s.items[id]
	return o, ok
}

func (s *store) owner(id string) string {
	return s.owners[id]
}

func (s *store) del(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	delete(s.owners, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *store) len() int {
	return len(s.items)
}

// list returns the resources matching the filter. An empty owner matches all
// of the owners.
func (s *store) list(owner string, filter object) []object {
	res := make([]object, 0, len(s.order))
	for _, id := range s.order {
		if owner != "" && s.owners[id] != owner {
			continue
		}
		o := s.items[id]
		if matches(o, filter) {
			res = append(res, o)
		}
	}
	return res
}

// matches tells if all of the filter's keys have equal values in o. The keys
// can be dotted paths like "schema.id".
func matches(o, filter object) bool {
	for k, want := range filter {
		got, ok := lookup(o, k)
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func lookup(o object, path string) (any, bool) {
	var cur any = o
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(object)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func parseFilter(s string) (object, error) {
	if s == "" {
		return nil, nil
	}
	f := make(object)
	if err := json.Unmarshal([]byte(s), &f); err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return f, nil
}

// clone copies o deeply enough that the caller can modify the top level and
// nested objects of the result.
func clone(o object) object {
	data, err := json.Marshal(o)
	if err != nil {
		panic(err)
	}
	c := make(object)
	if err := json.Unmarshal(data, &c); err != nil {
		panic(err)
	}
	return c
}

func envelope(items []object) object {
	return object{
		"count": len(items),
		"items": items,
	}
}
