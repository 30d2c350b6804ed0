package viewer

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	src := `<!doctype html>
<html><head><title> Demo  App </title><style>body{color:red}</style></head>
<body>
<script>alert("x")</script>
<h1>Welcome</h1>
<p>Hello   <b>world</b>.</p>
<ul><li>One</li><li>Two <a href="/two">link</a></li></ul>
<a href="#top">Top</a>
<img src="x.png" alt="Logo">
<pre>  keep
    spacing</pre>
</body></html>`

	title, text, err := Render(src)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if title != "Demo App" {
		t.Errorf("expected title 'Demo App', got %q", title)
	}

	for _, want := range []string{
		"# Welcome",
		"Hello world",
		"• One",
		"• Two link (/two)",
		"Top",
		"[Logo]",
		"  keep\n    spacing",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered text missing %q:\n%s", want, text)
		}
	}
	for _, unwanted := range []string{"alert", "color:red", "#top"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("rendered text should not contain %q:\n%s", unwanted, text)
		}
	}
	if strings.Contains(text, "\n\n\n") {
		t.Errorf("expected collapsed blank lines:\n%s", text)
	}
}

func TestRender_Empty(t *testing.T) {
	title, text, err := Render("")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if title != "" || text != "" {
		t.Errorf("expected empty output, got %q %q", title, text)
	}
}
