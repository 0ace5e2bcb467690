package ratio

import (
	"bytes"
	"encoding/json"
)

// Set is an ordered collection of named ratio series.
type Set struct {
	names  []string
	series map[string]Series
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{series: make(map[string]Series)}
}

// Add stores s under name, replacing any previous entry in place.
func (r *Set) Add(name string, s Series) {
	if _, ok := r.series[name]; !ok {
		r.names = append(r.names, name)
	}
	r.series[name] = s
}

// Get returns the series stored under name.
func (r *Set) Get(name string) (Series, bool) {
	if r == nil {
		return Series{}, false
	}
	s, ok := r.series[name]
	return s, ok
}

// Names returns ratio names in insertion order.
func (r *Set) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of ratios.
func (r *Set) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// MarshalJSON writes the set as an object in insertion order.
func (r *Set) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.series[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
