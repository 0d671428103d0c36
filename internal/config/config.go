package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for an annoreport project.
type Config struct {
	ProjDir        string `yaml:"proj_dir"`
	AnnotationsDir string `yaml:"annotations_dir"`
	CVAT           CVAT   `yaml:"cvat"`
	Email          Email  `yaml:"email_params"`
}

// CVAT describes how to reach the annotation server and which project to report on.
type CVAT struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	ProjectName      string `yaml:"project_name"`
	ProjectID        int    `yaml:"project_id"`
	AnnotationFormat string `yaml:"annotation_format"` // export format, e.g. "Datumaro 1.0"
	TaskIDsToSkip    []int  `yaml:"task_ids_to_skip,omitempty"`
}

// Email holds SMTP parameters for the daily report mail.
type Email struct {
	SMTPServer  string   `yaml:"smtp_server"`
	Port        int      `yaml:"port"`
	Username    string   `yaml:"username"`
	Password    string   `yaml:"password"`
	Sender      string   `yaml:"sender"`
	Destination string   `yaml:"destination"`
	CC          []string `yaml:"cc,omitempty"`
}

// BaseURL returns the CVAT server root, e.g. "http://cvat.local:8080".
func (c CVAT) BaseURL() string {
	if c.Port == 0 {
		return c.Host
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SkipSet returns the skip list as a set for membership checks.
func (c CVAT) SkipSet() map[int]bool {
	set := make(map[int]bool, len(c.TaskIDsToSkip))
	for _, id := range c.TaskIDsToSkip {
		set[id] = true
	}
	return set
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to the given path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns a starter config with placeholder values.
func DefaultConfig() *Config {
	return &Config{
		ProjDir:        "stats",
		AnnotationsDir: "annotations",
		CVAT: CVAT{
			Host:             "http://localhost",
			Port:             8080,
			AnnotationFormat: "Datumaro 1.0",
		},
		Email: Email{
			Port: 587,
		},
	}
}

func (c *Config) validate() error {
	if c.ProjDir == "" {
		return fmt.Errorf("proj_dir is required")
	}
	if c.AnnotationsDir == "" {
		return fmt.Errorf("annotations_dir is required")
	}
	if c.CVAT.Host == "" {
		return fmt.Errorf("cvat: host is required")
	}
	if c.CVAT.ProjectName == "" {
		return fmt.Errorf("cvat: project_name is required")
	}
	if c.CVAT.ProjectID == 0 {
		return fmt.Errorf("cvat: project_id is required")
	}
	if c.CVAT.AnnotationFormat == "" {
		return fmt.Errorf("cvat: annotation_format is required")
	}
	return nil
}
