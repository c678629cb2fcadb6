package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/matekkaland/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

const (
	pidFile = "matekd.pid"
	logFile = "matekd.log"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = cmdInit()
	case "start":
		err = cmdStart()
	case "stop":
		err = cmdStop()
	case "status":
		err = cmdStatus()
	case "logs":
		err = cmdLogs()
	case "doctor":
		err = cmdDoctor()
	case "config":
		err = cmdConfig()
	case "provider":
		err = cmdProvider(os.Args[2:])
	case "play":
		err = cmdPlay(os.Args[2:])
	case "stats":
		err = cmdStats()
	case "album":
		err = cmdAlbum(os.Args[2:])
	case "reset":
		err = cmdReset(os.Args[2:])
	case "mcp":
		err = cmdMCP(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Printf("matek %s\n", Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`MatekKaland - math adventures for young learners

Usage:
  matek <command> [arguments]

Setup Commands:
  init            First-time setup
  doctor          Check configuration and providers
  config          Show current configuration
  provider        Manage content providers

Play Commands:
  play            Play in the terminal (--ephemeral keeps nothing)
  stats           Show the player's statistics
  album list      Show the sticker album
  album move      Move a sticker: album move <from> <to>
  album theme     Pick the album background: album theme <id>
  reset           Delete the player profile (--yes skips the prompt)

Daemon Commands:
  start           Start the MatekKaland daemon
  stop            Stop the MatekKaland daemon
  status          Show daemon status
  logs            View daemon logs

Integration Commands:
  mcp             Start MCP server (stdio, or --http <addr>)

Other:
  help            Show this help message
  version         Show version information

Examples:
  matek init                      # Create ~/.matekkaland
  matek provider set-key claude   # Configure Claude API key
  matek play                      # Play a round in the terminal
  matek start                     # Start the local API daemon`)
}

// loadConfig ensures the data directory and loads the merged config.
func loadConfig() (string, *config.LocalConfig, error) {
	dir, err := config.EnsureDir()
	if err != nil {
		return "", nil, fmt.Errorf("setup data directory: %w", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return "", nil, fmt.Errorf("load config: %w", err)
	}
	return dir, cfg, nil
}

// daemonAddr returns the base URL of the local daemon.
func daemonAddr(cfg *config.LocalConfig) string {
	bind := cfg.Daemon.Bind
	if bind == "" || bind == "0.0.0.0" {
		bind = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", bind, cfg.Daemon.Port)
}

// renderProgressBar creates a visual progress bar for a 0-100 percentage
func renderProgressBar(percent, width int) string {
	filled := min(max(percent*width/100, 0), width)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
