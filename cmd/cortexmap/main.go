package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cortexmap/internal/adapters/tui"
	"cortexmap/internal/bootstrap"
	"cortexmap/internal/config"
	"cortexmap/internal/logging"
)

const defaultAgent = "cortexmap-tui"

func main() {
	configFlag := flag.String("config", "", "path to a YAML config file")
	dbFlag := flag.String("db", "", "path to the database")
	agentFlag := flag.String("agent", defaultAgent, "agent id recorded on commits")
	flag.Parse()

	if err := run(*configFlag, *dbFlag, *agentFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dbPath, agentID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = cfg.WithDatabase(dbPath)

	// The alternate screen owns stdout; only problems reach stderr
	logger, err := logging.New("warn", false)
	if err != nil {
		return err
	}

	rt, err := bootstrap.Open(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	app := tui.NewApp(rt.Versioner, agentID)

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
