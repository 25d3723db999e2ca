// Package config loads settings of the musik command from the environment.
// The input file is fixed, so settings only tune logging and buffering.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/pipelined/musik/log"
)

const (
	// BufferSizeEnv overrides number of frames per buffer.
	BufferSizeEnv = "MUSIK_BUFFER_SIZE"
	// DefaultBufferSize is number of frames per buffer if not overridden.
	DefaultBufferSize = 1024
)

// Config holds musik settings.
type Config struct {
	Debug      bool
	BufferSize int
}

// Load reads optional .env files and then the environment. Variables that
// are already set take precedence over files. Missing files are ignored.
func Load(filenames ...string) (*Config, error) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, filename := range filenames {
		if err := godotenv.Load(filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %v: %w", filename, err)
		}
	}

	cfg := Config{
		BufferSize: DefaultBufferSize,
	}
	if v := os.Getenv(log.DebugEnv); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %v: %w", log.DebugEnv, err)
		}
		cfg.Debug = debug
	}
	if v := os.Getenv(BufferSizeEnv); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %v: %w", BufferSizeEnv, err)
		}
		if size <= 0 {
			return nil, fmt.Errorf("invalid %v: %d is not positive", BufferSizeEnv, size)
		}
		cfg.BufferSize = size
	}
	return &cfg, nil
}
