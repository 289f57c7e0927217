package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/mybudget/internal/api"
	"github.com/jask/mybudget/internal/config"
	"github.com/jask/mybudget/internal/database"
	"github.com/jask/mybudget/internal/database/repository"
	"github.com/jask/mybudget/internal/events"
	"github.com/jask/mybudget/internal/events/amqpbridge"
	"github.com/jask/mybudget/internal/logging"
	"github.com/jask/mybudget/internal/money"
	"github.com/jask/mybudget/internal/secrets"
	"github.com/jask/mybudget/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mybudget:", err)
		os.Exit(1)
	}
}

func run() error {
	var writeConfig bool
	flag.BoolVar(&writeConfig, "write-config", false, "Write the effective configuration to the config file and exit")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if writeConfig {
		return config.Save(cfg)
	}

	logger, logFile, err := logging.OpenFile(cfg.Log.Path, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logging.SetDefault(logger)
	log := logger.WithComponent("main")

	endpoint := cfg.API.Endpoint()
	tokens, err := secrets.DefaultStore()
	if err != nil {
		return fmt.Errorf("secrets: %w", err)
	}
	token, err := tokens.FetchToken(endpoint)
	if err != nil && !errors.Is(err, secrets.ErrNotFound) {
		log.Warn("stored token unreadable, login required", "err", err)
	}
	client := api.New(api.Options{
		Endpoint: endpoint,
		Timeout:  cfg.API.Timeout,
		Token:    token,
		Logger:   logger,
	})

	hub := events.NewHub()
	defer hub.Close()
	if cfg.AMQP.URL != "" {
		bridge, err := amqpbridge.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, hub, logger)
		if err != nil {
			log.Warn("change relay disabled", "err", err)
		} else {
			defer bridge.Close()
			go func() {
				if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Warn("change relay stopped", "err", err)
				}
			}()
		}
	}

	deps := tui.Deps{
		Client:     client,
		Hub:        hub,
		Tokens:     tokens,
		Log:        logger,
		Money:      money.Formatter{Symbol: cfg.UI.CurrencySymbol},
		PerPage:    cfg.API.PerPage,
		DateFormat: cfg.UI.DateFormat,
		CloseDelay: cfg.UI.FormCloseDelay,
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Warn("saved filters disabled", "err", err)
	} else {
		defer db.Close()
		deps.Filters = repository.NewSavedFilterRepo(db)
	}

	var prog *tea.Program
	// pumps start from Init, after prog is set
	deps.Send = func(msg tea.Msg) { prog.Send(msg) }
	prog = tea.NewProgram(tui.NewModel(deps), tea.WithAltScreen(), tea.WithContext(ctx))

	log.Info("starting", "endpoint", endpoint, "logged_in", client.HasToken())
	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
