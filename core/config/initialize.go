package config

import (
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
)

// Initialize sets up the configuration directory, writing the default
// configuration and creating supporting files that don't yet exist.
func Initialize(path string, logger *log.Logger) error {
	if err := os.MkdirAll(path, 0700); err != nil {
		return err
	}

	configPath := filepath.Join(path, ConfigurationName)
	switch _, err := os.Stat(configPath); {
	case os.IsNotExist(err):
		logger.Printf("Creating configuration: %s", configPath)
		if err := ioutil.WriteFile(configPath, defaultConfigData, 0600); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		logger.Printf("Configuration exists: %s", configPath)
	}

	cfg, err := Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Printf("Creating transcript directory: %s", filepath.Join(path, cfg.TranscriptDir))
	if err := os.MkdirAll(filepath.Join(path, cfg.TranscriptDir), 0700); err != nil {
		return err
	}

	logger.Printf("Creating event log: %s", filepath.Join(path, cfg.EventLog))
	fd, err := cfg.OpenEventLog()
	if err != nil {
		return err
	}
	return fd.Close()
}
