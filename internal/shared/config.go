package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/taskdoc/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed config.example.toml
var exampleConf []byte

//go:embed template.example.md
var exampleTemplate []byte

const (
	DefaultDateColumn = "Date"
	DefaultDateFormat = "2006-01-02"
	DefaultRunAt      = "06:00"
	DefaultConfigPath = "config.toml"

	// ExampleTemplatePath is the template the example config points at, relative to the config file.
	ExampleTemplatePath = "templates/daily.md"
)

// DefaultScopes are requested when the config does not name any: read the schedule sheet, write documents.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets.readonly",
	"https://www.googleapis.com/auth/documents",
}

// Config represents the application configuration loaded from a TOML or YAML file.
type Config struct {
	GoogleSheets SheetsConfig      `toml:"google_sheets" yaml:"google_sheets"`
	Credentials  CredentialsConfig `toml:"credentials" yaml:"credentials"`
	Google       GoogleConfig      `toml:"google" yaml:"google"`
	Logging      LoggingConfig     `toml:"logging" yaml:"logging"`
	Schedule     ScheduleConfig    `toml:"schedule" yaml:"schedule"`
	DocBlocks    []DocBlockConfig  `toml:"doc_blocks" yaml:"doc_blocks"`

	// directory of the file the config was loaded from; relative template paths resolve against it
	baseDir string
}

// SheetsConfig describes the schedule spreadsheet.
type SheetsConfig struct {
	SpreadsheetID  string `toml:"spreadsheet_id" yaml:"spreadsheet_id"`
	TimeZone       string `toml:"time_zone" yaml:"time_zone"`
	DateColumnName string `toml:"date_column_name" yaml:"date_column_name"`
	DateFormat     string `toml:"date_format" yaml:"date_format"` // Go reference layout
}

// CredentialsConfig points at a Google service account key.
type CredentialsConfig struct {
	Path   string   `toml:"path" yaml:"path"`
	Scopes []string `toml:"scopes" yaml:"scopes"`
}

// GoogleConfig contains API client settings.
type GoogleConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // text, json
}

// ScheduleConfig contains settings for the long-running schedule command.
type ScheduleConfig struct {
	At string `toml:"at" yaml:"at"` // HH:MM in the sheet time zone
}

// DocBlockConfig maps one sheet tab to a destination document through a template.
type DocBlockConfig struct {
	Name               string `toml:"name" yaml:"name"`
	SheetName          string `toml:"sheet_name" yaml:"sheet_name"`
	TemplatePath       string `toml:"template_path" yaml:"template_path,omitempty"`
	Template           string `toml:"template" yaml:"template,omitempty"`
	BlockTitleTemplate string `toml:"block_title_template" yaml:"block_title_template"`
	DocID              string `toml:"doc_id" yaml:"doc_id"`
	Enabled            *bool  `toml:"enabled" yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the block should run. Blocks are enabled unless set otherwise.
func (b DocBlockConfig) IsEnabled() bool {
	return b.Enabled == nil || *b.Enabled
}

// LoadConfig reads and parses a configuration file from the specified path.
//
// Files ending in .yaml or .yml are parsed as YAML, everything else as TOML.
// Defaults are applied and the result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := ParseConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	config.baseDir = filepath.Dir(abs)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ParseConfig decodes raw config bytes and applies defaults. It does not validate.
func ParseConfig(data []byte, ext string) (*Config, error) {
	var config Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	default:
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
		}
	}

	config.applyDefaults()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyDefaults()
	return &config
}

// CreateConfigFile writes the example config to path, as YAML when the extension asks for it.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	data := exampleConf
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		out, err := yaml.Marshal(DefaultConfig())
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		data = out
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// CreateTemplateFile writes the example block template to path, creating parent directories.
// An existing file is left alone.
func CreateTemplateFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create template directory: %w", err)
	}
	if err := os.WriteFile(path, exampleTemplate, 0644); err != nil {
		return false, fmt.Errorf("failed to write template file: %w", err)
	}
	return true, nil
}

func (c *Config) applyDefaults() {
	if c.GoogleSheets.DateColumnName == "" {
		c.GoogleSheets.DateColumnName = DefaultDateColumn
	}
	if c.GoogleSheets.DateFormat == "" {
		c.GoogleSheets.DateFormat = DefaultDateFormat
	}
	if len(c.Credentials.Scopes) == 0 {
		c.Credentials.Scopes = append([]string(nil), DefaultScopes...)
	}
	if c.Google.RequestsPerSecond <= 0 {
		c.Google.RequestsPerSecond = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Schedule.At == "" {
		c.Schedule.At = DefaultRunAt
	}
}

// Validate checks required fields. Every problem is reported as [ErrInvalidConfig].
func (c *Config) Validate() error {
	var problems []string

	if c.GoogleSheets.SpreadsheetID == "" {
		problems = append(problems, "google_sheets.spreadsheet_id is required")
	}
	if c.GoogleSheets.TimeZone == "" {
		problems = append(problems, "google_sheets.time_zone is required")
	} else if _, err := time.LoadLocation(c.GoogleSheets.TimeZone); err != nil {
		problems = append(problems, fmt.Sprintf("google_sheets.time_zone %q is not a known zone", c.GoogleSheets.TimeZone))
	}
	if _, err := time.Parse("15:04", c.Schedule.At); err != nil {
		problems = append(problems, fmt.Sprintf("schedule.at %q must be HH:MM", c.Schedule.At))
	}
	if len(c.DocBlocks) == 0 {
		problems = append(problems, "doc_blocks must list at least one block")
	}

	for i, b := range c.DocBlocks {
		label := fmt.Sprintf("doc_blocks[%d]", i)
		if b.Name != "" {
			label = fmt.Sprintf("doc_blocks[%d] (%s)", i, b.Name)
		}
		required := map[string]string{
			"name":                 b.Name,
			"sheet_name":           b.SheetName,
			"block_title_template": b.BlockTitleTemplate,
			"doc_id":               b.DocID,
		}
		for _, field := range []string{"name", "sheet_name", "block_title_template", "doc_id"} {
			if required[field] == "" {
				problems = append(problems, fmt.Sprintf("%s: %s is required", label, field))
			}
		}
		switch {
		case b.TemplatePath == "" && b.Template == "":
			problems = append(problems, fmt.Sprintf("%s: one of template_path or template is required", label))
		case b.TemplatePath != "" && b.Template != "":
			problems = append(problems, fmt.Sprintf("%s: template_path and template are mutually exclusive", label))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the sheet time zone. Validate guarantees it loads.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.GoogleSheets.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: time_zone: %v", ErrInvalidConfig, err)
	}
	return loc, nil
}

// Blocks converts the configured doc blocks into run-scoped [models.Block] values, in declaration order.
func (c *Config) Blocks() []models.Block {
	blocks := make([]models.Block, 0, len(c.DocBlocks))
	for _, b := range c.DocBlocks {
		ref := models.TemplateRef{Source: b.Template}
		if b.TemplatePath != "" {
			ref.Path = c.resolve(b.TemplatePath)
		}
		blocks = append(blocks, models.Block{
			Name:          b.Name,
			SheetName:     b.SheetName,
			Template:      ref,
			TitleTemplate: b.BlockTitleTemplate,
			DocID:         b.DocID,
			Enabled:       b.IsEnabled(),
		})
	}
	return blocks
}

// CredentialsPath returns the service account key path from config, falling back to GOOGLE_CREDENTIALS_PATH.
func (c *Config) CredentialsPath() string {
	if c.Credentials.Path != "" {
		return c.resolve(c.Credentials.Path)
	}
	return os.Getenv(EnvCredentialsPath)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.baseDir == "" {
		return p
	}
	return filepath.Join(c.baseDir, p)
}
