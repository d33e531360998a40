package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/raffopazzo/depc-sub002/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to "+config.SettingsFileName+" (default: search from the working directory)")
	verbose := flag.Bool("v", false, "log every message")
	flag.Parse()

	// stdout carries the protocol, so logs go to stderr.
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	settings, err := loadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	NewLanguageServer(os.Stdout, settings, logger).Start(os.Stdin)
}

func loadSettings(path string) (config.Settings, error) {
	if path == "" {
		found, err := config.FindSettings(".")
		if err != nil || found == "" {
			return config.DefaultSettings(), err
		}
		path = found
	}
	return config.LoadSettings(path)
}
