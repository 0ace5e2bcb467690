package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Point is a single period label and its value.
type Point struct {
	Label string
	Value float64
}

// TimeSeries maps fiscal-period labels to values while keeping the order in
// which labels were added. Producers add labels most-recent-first.
// A label holding NaN carries a null value.
type TimeSeries struct {
	labels []string
	values map[string]float64
}

// NewTimeSeries creates a series from points in the given order.
func NewTimeSeries(points ...Point) *TimeSeries {
	s := &TimeSeries{values: make(map[string]float64, len(points))}
	for _, p := range points {
		s.Set(p.Label, p.Value)
	}
	return s
}

// Set assigns a value, appending the label if it is new.
func (s *TimeSeries) Set(label string, v float64) {
	if s.values == nil {
		s.values = make(map[string]float64)
	}
	if _, ok := s.values[label]; !ok {
		s.labels = append(s.labels, label)
	}
	s.values[label] = v
}

// Get returns the value at label.
func (s *TimeSeries) Get(label string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.values[label]
	return v, ok
}

// Has reports whether label is present.
func (s *TimeSeries) Has(label string) bool {
	_, ok := s.Get(label)
	return ok
}

// Len returns the number of labels.
func (s *TimeSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.labels)
}

// Labels returns a copy of the labels in insertion order.
func (s *TimeSeries) Labels() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Points returns label/value pairs in insertion order.
func (s *TimeSeries) Points() []Point {
	if s == nil {
		return nil
	}
	out := make([]Point, len(s.labels))
	for i, l := range s.labels {
		out[i] = Point{Label: l, Value: s.values[l]}
	}
	return out
}

// Latest returns the value at the first label.
func (s *TimeSeries) Latest() (float64, bool) {
	if s.Len() == 0 {
		return 0, false
	}
	return s.values[s.labels[0]], true
}

// Clone returns an independent copy.
func (s *TimeSeries) Clone() *TimeSeries {
	if s == nil {
		return nil
	}
	return NewTimeSeries(s.Points()...)
}

// MarshalJSON encodes the series as an object in label order.
// Non-finite values are written as null.
func (s TimeSeries) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range s.labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := WriteField(&buf, l, s.values[l]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of label -> number|null keeping key order.
func (s *TimeSeries) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("time series: expected object, got %v", tok)
	}

	s.labels = nil
	s.values = make(map[string]float64)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("time series: expected label, got %v", tok)
		}
		var v *float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("time series %q: %w", label, err)
		}
		if v == nil {
			s.Set(label, math.NaN())
			continue
		}
		s.Set(label, *v)
	}
	_, err = dec.Token()
	return err
}

// WriteField writes "key":value to buf, using null for non-finite values.
func WriteField(buf *bytes.Buffer, key string, v float64) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	if IsDegenerate(v) {
		buf.WriteString("null")
		return nil
	}
	n, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(n)
	return nil
}
