package config

import (
	"io/ioutil"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if err := Initialize(tempDir, log.New(ioutil.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	t.Run("CreateTranscript", func(t *testing.T) {
		fd, err := cfg.CreateTranscript("session.cast")
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("OpenEventLog", func(t *testing.T) {
		fd, err := cfg.OpenEventLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("ReadEventLog", func(t *testing.T) {
		fd, err := cfg.ReadEventLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("HistoryPath", func(t *testing.T) {
		assert.Equal(t, filepath.Join(tempDir, "history.db"), cfg.HistoryPath())
	})
}

func TestInitializeTwice(t *testing.T) {
	tempDir := t.TempDir()
	logger := log.New(ioutil.Discard, "", 0)

	if err := Initialize(tempDir, logger); err != nil {
		t.Fatal(err)
	}
	if err := Initialize(tempDir, logger); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfigFilePath(t *testing.T) {
	tempDir := t.TempDir()
	if err := Initialize(tempDir, log.New(ioutil.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Loading by the config.yaml path works the same as by directory.
	cfg, err := Load(filepath.Join(tempDir, ConfigurationName))
	assert.Nil(t, err)
	assert.Equal(t, tempDir, cfg.Dir())
}
