// Command musik plays misty_rainbow.flac on the default output device.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pipelined/musik/internal/config"
	"github.com/pipelined/musik/log"
	"github.com/pipelined/musik/player"
	"github.com/pipelined/musik/portaudio"
)

const path = "misty_rainbow.flac"

const (
	successExitCode = 0
	errorExitCode   = 1
)

func main() {
	os.Exit(run(openDevice, os.Stderr))
}

func openDevice() (player.Output, error) {
	d, err := portaudio.Open()
	if err != nil {
		return nil, err
	}
	return d, nil
}

func run(open player.OpenFunc, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "musik: %v\n", err)
		return errorExitCode
	}
	logger := log.New(cfg.Debug)
	logger.SetOutput(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := player.New(open,
		player.WithBufferSize(cfg.BufferSize),
		player.WithLogger(logger),
	)
	if err := p.Play(ctx, path); err != nil {
		fmt.Fprintf(stderr, "musik: %v\n", err)
		return errorExitCode
	}
	return successExitCode
}
