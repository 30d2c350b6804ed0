package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestPatch_Apply(t *testing.T) {
	app := App{ID: "a", Name: "Alpha", URL: "https://a.test/", Icon: "/images/default.svg"}

	name := "Renamed"
	got := Patch{Name: &name}.Apply(app)
	if got.Name != "Renamed" {
		t.Errorf("Expected name 'Renamed', got %s", got.Name)
	}
	if got.URL != app.URL {
		t.Errorf("URL should be untouched, got %s", got.URL)
	}
	if app.Name != "Alpha" {
		t.Error("Apply should not mutate the original app")
	}
}

func TestURLPatch(t *testing.T) {
	p := URLPatch("https://b.test/")
	if p.URL == nil || *p.URL != "https://b.test/" {
		t.Fatalf("Expected URL patch, got %+v", p)
	}
	if p.Name != nil || p.Icon != nil {
		t.Error("URLPatch should only set URL")
	}
}

func TestApp_YAMLRoundTrip(t *testing.T) {
	want := App{ID: "x1", Name: "Demo", URL: "https://demo.test/", Icon: "/images/default.svg", IsDefault: true}

	data, err := yaml.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got App
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_JSONRoundTrip(t *testing.T) {
	want := App{ID: "x2", Name: "Demo", URL: "ftp://demo.test/", Icon: "/images/github.svg"}

	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var got App
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
