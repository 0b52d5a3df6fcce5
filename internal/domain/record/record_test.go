package record

import "testing"

func TestRecord_Get(t *testing.T) {
	r := Record{"name": "Gasabo", "year": ""}

	if v, ok := r.Get("name"); !ok || v != "Gasabo" {
		t.Errorf("Get(name) = %q, %v", v, ok)
	}
	if _, ok := r.Get("year"); ok {
		t.Error("empty value must read as absent")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("missing key must read as absent")
	}
}

func TestRecord_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"only doc id", Record{DocIDKey: "x", "a": ""}, true},
		{"nil", nil, true},
		{"one value", Record{DocIDKey: "x", "a": "1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}
