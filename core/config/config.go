package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
)

type Configuration struct {
	configDir string
	configFs  afero.Fs

	Prompt string `json:"prompt"`

	History History `json:"history"`

	EventLog string `json:"event_log" validate:"required"`

	TranscriptDir string `json:"transcript_dir" validate:"required"`
}

type History struct {
	File  string `json:"file" validate:"required"`
	Limit int    `json:"limit" validate:"gte=0"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// CreateTranscript creates a transcript file with the given name.
func (c *Configuration) CreateTranscript(name string) (afero.File, error) {
	if err := c.fs().MkdirAll(c.TranscriptDir, 0700); err != nil {
		return nil, err
	}
	return c.fs().Create(filepath.Join(c.TranscriptDir, name))
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.EventLog, os.O_RDONLY, 0600)
}

// HistoryPath returns the path of the history database on the host
// filesystem.
func (c *Configuration) HistoryPath() string {
	return filepath.Join(c.configDir, c.History.File)
}

// Dir returns the configuration directory.
func (c *Configuration) Dir() string {
	return c.configDir
}

// DefaultDir returns the configuration directory used when none is given.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".jcsh"), nil
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
