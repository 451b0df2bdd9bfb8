package types

import (
	"encoding/json"
	"testing"
)

func TestOptionalUnmarshal(t *testing.T) {
	type payload struct {
		URL Optional[string] `json:"url"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"url": "https://shop.example"}`), &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !got.URL.Set || got.URL.Value == nil || *got.URL.Value != "https://shop.example" {
		t.Fatalf("expected set value, got %+v", got.URL)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"url": null}`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.URL.Set || got.URL.Value != nil {
		t.Fatalf("expected null to be set but nil, got %+v", got.URL)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal missing: %v", err)
	}
	if got.URL.Set {
		t.Fatalf("expected unset for missing field, got %+v", got.URL)
	}
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var opt Optional[int]
	if err := json.Unmarshal([]byte(`"nope"`), &opt); err == nil {
		t.Fatal("expected type mismatch to fail")
	}
}
