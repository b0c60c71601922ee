package main

import (
	"fmt"

	"github.com/at-ishikawa/legogate/internal/cli"
	"github.com/at-ishikawa/legogate/internal/config"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

func loadCourse() (*config.Config, *cli.Course, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	c, err := cli.LoadCourse(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("cli.LoadCourse() > %w", err)
	}
	return cfg, c, nil
}
