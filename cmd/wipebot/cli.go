package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/elguiriashing/amsterdam/internal/api"
	"github.com/elguiriashing/amsterdam/internal/conf"
	"github.com/elguiriashing/amsterdam/internal/data"
	"github.com/elguiriashing/amsterdam/internal/server"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "wipebot",
		Usage:   "Chat bot that periodically wipes a group chat, keeping the pinned message",
		Version: Version,
		Action:  runBot,
		Commands: []*cli.Command{
			runCmd(),
			historyCmd(),
			statusCmd(),
			notifyCmd(),
			wipeCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func apiURLFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "api-url",
		Usage:   "Base URL of a running bot's local API",
		EnvVars: []string{"WIPEBOT_API_URL"},
	}
}

// runCmd creates the run command.
func runCmd() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Run the bot (default when no command is given)",
		Action: runBot,
	}
}

func runBot(_ *cli.Context) error {
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	srv, err := server.NewBotServer(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("[Bot] Chat %d, journal %q, API port %d\n", cfg.Bot.ChatID, cfg.JournalPath(), cfg.API.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("Starting wipebot...")
	srv.Start(ctx)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		fmt.Println("\nShutting down...")
	case runErr = <-srv.APIErrors():
	}

	srv.Stop()
	return runErr
}

// historyCmd creates the history command.
func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Print recent wipe runs from the journal database",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum runs to print"},
			&cli.StringFlag{Name: "db", Usage: "Journal database path (defaults to JOURNAL_DB_PATH)"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("db")
			if path == "" {
				path = conf.LoadFromEnv().Journal.DBPath
			}

			journal, err := data.NewJournalRepo(path)
			if err != nil {
				return err
			}
			defer journal.Close()

			runs, err := journal.List(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}

			if c.Bool("json") {
				out := make([]*api.WipeRun, 0, len(runs))
				for _, run := range runs {
					out = append(out, api.ToWipeRun(run))
				}
				return outputJSON(out)
			}

			if len(runs) == 0 {
				fmt.Println("no wipes recorded")
				return nil
			}
			for _, run := range runs {
				result := fmt.Sprintf("%d deleted, %d failed, %d drained", run.Deleted, run.Failed, run.Drained)
				if run.Aborted() {
					result = "aborted: " + run.Error
				}
				fmt.Printf("%s  %-8s  chat %d  %s\n",
					run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.Reason, run.ChatID, result)
			}
			return nil
		},
	}
}

// statusCmd creates the status command.
func statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the status of a running bot",
		Flags: []cli.Flag{apiURLFlag()},
		Action: func(c *cli.Context) error {
			status, err := clientFor(c).Status()
			if err != nil {
				return err
			}
			return outputJSON(status)
		},
	}
}

// notifyCmd creates the notify command.
func notifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "notify",
		Usage:     "Post a self-deleting notification through a running bot",
		ArgsUsage: "<text>",
		Flags:     []cli.Flag{apiURLFlag()},
		Action: func(c *cli.Context) error {
			text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if text == "" {
				return fmt.Errorf("notification text is required")
			}

			id, err := clientFor(c).Notify(text)
			if err != nil {
				return err
			}
			return outputJSON(api.NotifyResponse{MessageID: id})
		},
	}
}

// wipeCmd creates the wipe command.
func wipeCmd() *cli.Command {
	return &cli.Command{
		Name:  "wipe",
		Usage: "Trigger an immediate wipe on a running bot",
		Flags: []cli.Flag{apiURLFlag()},
		Action: func(c *cli.Context) error {
			run, err := clientFor(c).Wipe()
			if err != nil {
				return err
			}
			return outputJSON(run)
		},
	}
}

func clientFor(c *cli.Context) *api.Client {
	if url := c.String("api-url"); url != "" {
		return api.NewClient(url)
	}
	return api.NewClient(api.LocalURL(conf.LoadFromEnv().API.Port))
}

func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
