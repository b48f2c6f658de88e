package mapping

import (
	"bytes"
	"encoding/json"
)

// Result mirrors the shape of a resolved template. A leaf holds the stored
// value or nothing (null); a group holds labelled children in template
// order.
type Result struct {
	leaf   bool
	value  *string
	fields []ResultField
}

// ResultField is a labelled child of a group Result.
type ResultField struct {
	Label  string
	Result Result
}

func leafResult(v string, ok bool) Result {
	if !ok {
		return Result{leaf: true}
	}
	return Result{leaf: true, value: &v}
}

// IsLeaf reports whether r is a scalar (or null) result.
func (r Result) IsLeaf() bool { return r.leaf }

// Value returns the resolved scalar. ok is false for null leaves and groups.
func (r Result) Value() (string, bool) {
	if r.value == nil {
		return "", false
	}
	return *r.value, true
}

// Fields returns a copy of the group's children.
func (r Result) Fields() []ResultField {
	return append([]ResultField(nil), r.fields...)
}

// Labels returns the group's labels in order.
func (r Result) Labels() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Label
	}
	return out
}

// Get returns the child with the given label.
func (r Result) Get(label string) (Result, bool) {
	for _, f := range r.fields {
		if f.Label == label {
			return f.Result, true
		}
	}
	return Result{}, false
}

// Lookup follows a label path from r.
func (r Result) Lookup(labels ...string) (Result, bool) {
	cur := r
	for _, l := range labels {
		next, ok := cur.Get(l)
		if !ok {
			return Result{}, false
		}
		cur = next
	}
	return cur, true
}

// MarshalJSON writes groups as objects with keys in template order and
// leaves as strings or null.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r Result) encode(buf *bytes.Buffer) error {
	if r.leaf {
		if r.value == nil {
			buf.WriteString("null")
			return nil
		}
		b, err := json.Marshal(*r.value)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}

	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Label)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := f.Result.encode(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
