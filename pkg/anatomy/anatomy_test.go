package anatomy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testAnatomy() *Anatomy {
	return &Anatomy{
		ProjectName: "demo",
		Roots: map[string]string{
			"work": "/mnt/projects",
		},
		Templates: map[string]map[string]Template{
			"publish": {
				"default": {
					Directory: "{root[work]}/{project[name]}/{folder[name]}/publish/{product[type]}/{product[name]}/v{version:0>3}",
				},
				"render": {
					Directory: "{root[work]}/{project[name]}/{folder[name]}/render/{product[name]}/v{version:0>3}",
				},
			},
		},
	}
}

func templateData() map[string]any {
	return map[string]any{
		"project": map[string]any{"name": "demo"},
		"folder":  map[string]any{"name": "sh010"},
		"product": map[string]any{"name": "renderMain", "type": "render"},
		"version": 5,
	}
}

func TestFormatStrict(t *testing.T) {
	a := testAnatomy()
	tpl, err := a.TemplateItem("publish", "render")
	if err != nil {
		t.Fatalf("TemplateItem() returned error: %v", err)
	}

	dir, err := a.FormatStrict(tpl, templateData())
	if err != nil {
		t.Fatalf("FormatStrict() returned error: %v", err)
	}

	expected := "/mnt/projects/demo/sh010/render/renderMain/v005"
	if dir != expected {
		t.Errorf("FormatStrict() = %q, expected %q", dir, expected)
	}
}

func TestFormatStrict_MissingFieldFails(t *testing.T) {
	a := testAnatomy()
	tpl, _ := a.TemplateItem("publish", "default")

	data := templateData()
	delete(data, "version")

	_, err := a.FormatStrict(tpl, data)
	if err == nil {
		t.Fatal("FormatStrict() must fail when a referenced field is missing")
	}
	if !strings.Contains(err.Error(), "version") {
		t.Errorf("error %q does not name the missing field", err)
	}
}

func TestTemplateItem_FallsBackToDefault(t *testing.T) {
	a := testAnatomy()
	tpl, err := a.TemplateItem("publish", "doesNotExist")
	if err != nil {
		t.Fatalf("TemplateItem() returned error: %v", err)
	}
	if tpl.Directory != a.Templates["publish"]["default"].Directory {
		t.Error("expected fallback to the default publish template")
	}
}

func TestLoad(t *testing.T) {
	content := `
projectName: demo
roots:
  work: /mnt/projects
templates:
  publish:
    default:
      directory: "{root[work]}/{project[name]}/publish/v{version:0>3}"
`
	path := filepath.Join(t.TempDir(), "anatomy.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	a, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if a.ProjectName != "demo" {
		t.Errorf("ProjectName = %q, expected demo", a.ProjectName)
	}

	tpl, err := a.TemplateItem("publish", "default")
	if err != nil {
		t.Fatalf("TemplateItem() returned error: %v", err)
	}
	dir, err := a.FormatStrict(tpl, map[string]any{
		"project": map[string]any{"name": "demo"},
		"version": 12,
	})
	if err != nil {
		t.Fatalf("FormatStrict() returned error: %v", err)
	}
	if dir != "/mnt/projects/demo/publish/v012" {
		t.Errorf("FormatStrict() = %q", dir)
	}
}
