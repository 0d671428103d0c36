package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "annoreport.yaml")
	if err := os.WriteFile(p, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

const validConfig = `proj_dir: /data/eus/stats
annotations_dir: /data/eus/annotations
cvat:
  host: http://cvat.local
  port: 8080
  username: reporter
  password: hunter2
  project_name: EUS
  project_id: 7
  annotation_format: "Datumaro 1.0"
  task_ids_to_skip: [3, 17]
email_params:
  smtp_server: smtp.example.com
  port: 587
  username: bot
  password: secret
  sender: bot@example.com
  destination: team@example.com
  cc: [lead@example.com]
`

func TestLoad_Valid(t *testing.T) {
	p := writeConfig(t, validConfig)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProjDir != "/data/eus/stats" {
		t.Errorf("proj_dir: got %q", cfg.ProjDir)
	}
	if cfg.CVAT.ProjectName != "EUS" || cfg.CVAT.ProjectID != 7 {
		t.Errorf("cvat project: got %+v", cfg.CVAT)
	}
	if len(cfg.CVAT.TaskIDsToSkip) != 2 {
		t.Errorf("expected 2 skip ids, got %v", cfg.CVAT.TaskIDsToSkip)
	}
	if cfg.Email.Destination != "team@example.com" {
		t.Errorf("email destination: got %q", cfg.Email.Destination)
	}
	if len(cfg.Email.CC) != 1 || cfg.Email.CC[0] != "lead@example.com" {
		t.Errorf("email cc: got %v", cfg.Email.CC)
	}
}

func TestLoad_MissingProjDir(t *testing.T) {
	p := writeConfig(t, `annotations_dir: /tmp
cvat:
  host: http://cvat.local
  project_name: EUS
  project_id: 7
  annotation_format: "Datumaro 1.0"
`)
	if _, err := Load(p); err == nil {
		t.Fatal("expected validation error for missing proj_dir")
	}
}

func TestLoad_MissingProjectName(t *testing.T) {
	p := writeConfig(t, `proj_dir: /tmp/stats
annotations_dir: /tmp/ann
cvat:
  host: http://cvat.local
  project_id: 7
  annotation_format: "Datumaro 1.0"
`)
	if _, err := Load(p); err == nil {
		t.Fatal("expected validation error for missing project_name")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := Load("/nonexistent/annoreport.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBaseURL_WithPort(t *testing.T) {
	c := CVAT{Host: "http://cvat.local", Port: 8080}
	if got := c.BaseURL(); got != "http://cvat.local:8080" {
		t.Fatalf("got %q", got)
	}
}

func TestBaseURL_WithoutPort(t *testing.T) {
	c := CVAT{Host: "https://cvat.example.com"}
	if got := c.BaseURL(); got != "https://cvat.example.com" {
		t.Fatalf("got %q", got)
	}
}

func TestSkipSet(t *testing.T) {
	c := CVAT{TaskIDsToSkip: []int{3, 17}}
	set := c.SkipSet()
	if !set[3] || !set[17] {
		t.Fatalf("skip ids missing: %v", set)
	}
	if set[4] {
		t.Fatal("unexpected skip id 4")
	}
}

func TestSave_And_Reload(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "annoreport.yaml")

	cfg := &Config{
		ProjDir:        "/data/stats",
		AnnotationsDir: "/data/ann",
		CVAT: CVAT{
			Host:             "http://cvat.local",
			Port:             8080,
			ProjectName:      "EUS",
			ProjectID:        7,
			AnnotationFormat: "Datumaro 1.0",
			TaskIDsToSkip:    []int{5},
		},
	}

	if err := Save(p, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(p)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.CVAT.ProjectID != 7 {
		t.Fatalf("project_id lost after round-trip: got %d", loaded.CVAT.ProjectID)
	}
	if len(loaded.CVAT.TaskIDsToSkip) != 1 || loaded.CVAT.TaskIDsToSkip[0] != 5 {
		t.Fatalf("skip list lost after round-trip: %v", loaded.CVAT.TaskIDsToSkip)
	}
}
