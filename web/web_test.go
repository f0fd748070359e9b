package web

import (
	"html/template"
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedTemplatesParse(t *testing.T) {
	templatesFS := GetTemplatesFS()

	for _, file := range []string{"index.html", "admin/login.html"} {
		if _, err := template.ParseFS(templatesFS, file); err != nil {
			t.Errorf("template %q does not parse: %v", file, err)
		}
	}
}

func TestEmbeddedStaticFilesExist(t *testing.T) {
	staticFS := GetStaticFS()

	for _, file := range []string{"app.js", "style.css"} {
		content, err := fs.ReadFile(staticFS, file)
		if err != nil {
			t.Errorf("static file %q not found: %v", file, err)
			continue
		}
		if len(content) == 0 {
			t.Errorf("static file %q is empty", file)
		}
	}
}

func TestIndexUsesFormAPI(t *testing.T) {
	content, err := fs.ReadFile(GetStaticFS(), "app.js")
	if err != nil {
		t.Fatalf("failed to read app.js: %v", err)
	}
	for _, path := range []string{"/api/form/field", "/api/form/submit", "/api/entries", "/ws"} {
		if !strings.Contains(string(content), path) {
			t.Errorf("app.js does not call %s", path)
		}
	}
}

func TestLoginTemplatePostsPIN(t *testing.T) {
	content, err := fs.ReadFile(GetTemplatesFS(), "admin/login.html")
	if err != nil {
		t.Fatalf("failed to read login template: %v", err)
	}
	if !strings.Contains(string(content), `name="pin"`) {
		t.Error("login form must post a pin field")
	}
}
