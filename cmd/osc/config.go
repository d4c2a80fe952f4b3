package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type listenConfig struct {
	Bind          string `yaml:"bind"`
	Strategy      string `yaml:"strategy"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
	StopGraceMs   int    `yaml:"stop_grace_ms"`
}

func loadListenConfig(path string) (*listenConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := &listenConfig{Bind: "127.0.0.1:8765", Strategy: "blocking"}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}
