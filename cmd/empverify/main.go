// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/empverify"
	"github.com/poiesic/empverify/api"
	"github.com/poiesic/empverify/config"
	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/duplicate"
	"github.com/poiesic/empverify/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "empverify",
		Usage: "Employment verification over a permissioned ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB ledger directory (overrides ledger.path)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Listen address (overrides server.listen_addr)",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Search employment records",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Employee name"},
					&cli.StringFlag{Name: "employer-id", Usage: "Employer ID"},
					&cli.StringFlag{Name: "employer-name", Usage: "Employer name filter"},
					&cli.StringFlag{Name: "national-id", Usage: "Employee national ID"},
					&cli.StringFlag{Name: "start-date", Usage: "Employment start date (YYYY-MM or YYYY-MM-DD)"},
					&cli.StringFlag{Name: "job-title", Usage: "Job title filter"},
					&cli.StringFlag{
						Name:  "search-type",
						Usage: "Name matching (exact, partial, fuzzy)",
						Value: string(search.MatchPartial),
					},
					&cli.IntFlag{
						Name:  "max-results",
						Usage: "Maximum number of results",
					},
				},
			},
			{
				Name:   "verify",
				Usage:  "Verify an employment claim",
				Action: verifyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Employee name", Required: true},
					&cli.StringFlag{Name: "employer", Usage: "Employer ID or name", Required: true},
				},
			},
			{
				Name:   "check-duplicate",
				Usage:  "Check whether an employee is already on record",
				Action: checkDuplicateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Employee full name", Required: true},
					&cli.StringFlag{Name: "employer-id", Usage: "Employer ID", Required: true},
					&cli.StringFlag{Name: "level", Usage: "Check level (strict, moderate, loose)"},
					&cli.StringFlag{Name: "exclude", Usage: "Employee ID to ignore"},
				},
			},
			{
				Name:   "create",
				Usage:  "Create an employment record from a JSON file",
				Action: createCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON record file, - for stdin",
						Required: true,
					},
					&cli.StringFlag{Name: "check-level", Usage: "Duplicate check level (strict, moderate, loose)"},
					&cli.BoolFlag{Name: "upsert", Usage: "Update the record with the same national ID and employer if one exists"},
				},
			},
			{
				Name:      "get",
				Usage:     "Read an employment record",
				ArgsUsage: "EMPLOYEE_ID",
				Action:    getCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "history", Usage: "Print every committed version"},
				},
			},
			{
				Name:   "counter",
				Usage:  "Print the employee counter of a year",
				Action: counterCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "year", Usage: "Year (defaults to the current year)"},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if db := c.String("db"); db != "" {
		cfg.Ledger.Path = db
		cfg.Ledger.InMemory = false
	}
	return cfg, nil
}

// openEngine opens the engine for a one-shot command. Its metrics stay private
// to the process.
func openEngine(c *cli.Context) (*empverify.Engine, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	engine, err := empverify.NewEngine(cfg, empverify.WithMetricsRegistry(prometheus.NewRegistry()))
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return engine, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if listen := c.String("listen"); listen != "" {
		cfg.Server.ListenAddr = listen
	}

	engine, err := empverify.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer engine.Close()

	server, err := engine.NewServer()
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	srv := api.NewHTTPServer(cfg.Server.ListenAddr, server.Handler(), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	criteria := search.Criteria{
		EmployeeName:        c.String("name"),
		EmployerID:          c.String("employer-id"),
		EmployerName:        c.String("employer-name"),
		NationalID:          c.String("national-id"),
		EmploymentStartDate: c.String("start-date"),
		JobTitle:            c.String("job-title"),
		SearchType:          search.MatchType(c.String("search-type")),
		MaxResults:          c.Int("max-results"),
	}
	if criteria.EmployeeName == "" && criteria.EmployerID == "" {
		return fmt.Errorf("name or employer-id is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	resp, err := engine.Searcher().Search(c.Context, criteria)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return printJSON(c.App.Writer, resp)
}

func verifyCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	resp, err := engine.Searcher().Verify(c.Context, c.String("name"), c.String("employer"))
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	return printJSON(c.App.Writer, resp)
}

func checkDuplicateCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Detector().Check(c.Context, duplicate.Request{
		EmployeeName:      &core.NameInfo{FullName: c.String("name")},
		EmployerID:        c.String("employer-id"),
		CheckLevel:        c.String("level"),
		ExcludeEmployeeID: c.String("exclude"),
	})
	if err != nil {
		return fmt.Errorf("duplicate check failed: %w", err)
	}
	return printJSON(c.App.Writer, result)
}

func createCommand(c *cli.Context) error {
	var data []byte
	var err error
	if path := c.String("file"); path == "-" {
		data, err = io.ReadAll(c.App.Reader)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read record: %w", err)
	}

	var record core.EmploymentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("failed to parse record: %w", err)
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	write := engine.Records().Create
	if c.Bool("upsert") {
		write = engine.Records().Upsert
	}
	out, err := write(c.Context, &record, c.String("check-level"))
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return printJSON(c.App.Writer, out)
}

func getCommand(c *cli.Context) error {
	employeeID := c.Args().First()
	if employeeID == "" {
		return fmt.Errorf("employee id is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if c.Bool("history") {
		history, err := engine.Records().History(c.Context, employeeID)
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, history)
	}
	record, err := engine.Records().Get(c.Context, employeeID)
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, record)
}

func counterCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	counter, err := engine.Records().Counter(c.Context, c.Int("year"))
	if err != nil {
		return err
	}
	return printJSON(c.App.Writer, counter)
}
