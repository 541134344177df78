package app

import "github.com/mmo1994/meetsync/pkg/logger"

// ConfigureLogging initialises the global logger from the configured level.
func ConfigureLogging(level string) error {
	return logger.Init(level)
}
