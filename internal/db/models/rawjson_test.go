package models

import (
	"bytes"
	"testing"
)

func TestRawJSON_ScanNull(t *testing.T) {
	r := RawJSON(`{"stale":true}`)
	if err := r.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error: %v", err)
	}
	if r != nil {
		t.Errorf("Scan(nil) left %q, want nil", r)
	}

	p := &Platform{RawAPI: r}
	if err := p.DecodeAPI(); err != nil {
		t.Fatalf("DecodeAPI after NULL scan: %v", err)
	}
	if p.API != nil {
		t.Errorf("API = %v, want nil for a NULL column", p.API)
	}
}

func TestRawJSON_ScanCopiesDriverBuffer(t *testing.T) {
	buf := []byte(`{"a":1}`)
	var r RawJSON
	if err := r.Scan(buf); err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	buf[2] = 'x'
	if !bytes.Equal(r, []byte(`{"a":1}`)) {
		t.Errorf("scanned value aliases the driver buffer: %q", r)
	}
}

func TestRawJSON_Value(t *testing.T) {
	var empty RawJSON
	v, err := empty.Value()
	if err != nil {
		t.Fatalf("Value error: %v", err)
	}
	if v != nil {
		t.Errorf("empty Value() = %v, want NULL", v)
	}

	v, err = RawJSON(`{"a":1}`).Value()
	if err != nil {
		t.Fatalf("Value error: %v", err)
	}
	if b, ok := v.([]byte); !ok || !bytes.Equal(b, []byte(`{"a":1}`)) {
		t.Errorf("Value() = %v, want raw bytes", v)
	}
}

func TestRawJSON_MarshalJSON(t *testing.T) {
	out, err := RawJSON(nil).MarshalJSON()
	if err != nil || string(out) != "null" {
		t.Errorf("nil MarshalJSON = %q, %v; want null", out, err)
	}

	out, err = RawJSON(`{"a":1}`).MarshalJSON()
	if err != nil || string(out) != `{"a":1}` {
		t.Errorf("MarshalJSON = %q, %v; want document verbatim", out, err)
	}
}
