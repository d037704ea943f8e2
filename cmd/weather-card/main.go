package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/i474232898/account-weather/internal/config"
	"github.com/i474232898/account-weather/internal/remote"
	"github.com/i474232898/account-weather/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	server := flag.String("server", cfg.ServerURL, "account weather API base URL")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: weather-card [-server URL] ACCOUNT_ID")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := remote.NewClient(*server, cfg.HTTPTimeout)
	card := tui.NewCard(ctx, flag.Arg(0), client)

	if _, err := tea.NewProgram(card).Run(); err != nil {
		log.Fatalf("weather card: %v", err)
	}
}
