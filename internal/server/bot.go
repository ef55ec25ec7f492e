package server

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/elguiriashing/amsterdam/internal/api"
	"github.com/elguiriashing/amsterdam/internal/biz/domain"
	"github.com/elguiriashing/amsterdam/internal/conf"
	"github.com/elguiriashing/amsterdam/internal/data"
	"github.com/elguiriashing/amsterdam/internal/infra/telegram"
	"github.com/elguiriashing/amsterdam/internal/service"
)

const shutdownTimeout = 5 * time.Second

// BotServer wires the wipe engine, its scheduler and the local API for one chat
type BotServer struct {
	repos     *data.Repositories
	engine    *service.Engine
	scheduler *service.WipeScheduler
	apiServer *api.Server

	apiErr chan error
}

// NewBotServer builds every layer from configuration
func NewBotServer(cfg *conf.Config) (*BotServer, error) {
	schedule, err := cfg.DefaultSchedule()
	if err != nil {
		return nil, errors.Wrap(err, "default schedule")
	}

	client := telegram.NewClient(cfg.Bot.APIBaseURL, cfg.Bot.Token, cfg.Bot.RequestTimeout)

	repos, err := data.NewRepositories(client, cfg.JournalPath())
	if err != nil {
		return nil, errors.Wrap(err, "create repositories")
	}

	clock := service.RealClock
	engine := service.NewEngine(cfg.ToEngineConfig(), repos.Platform, repos.Journal, clock)

	scheduler := service.NewWipeScheduler(clock, schedule, func() {
		if _, err := engine.TriggerWipe(domain.WipeReasonSchedule); err != nil {
			fmt.Printf("[Server] Scheduled wipe skipped: %v\n", err)
		}
	})
	engine.SetScheduler(scheduler)

	return &BotServer{
		repos:     repos,
		engine:    engine,
		scheduler: scheduler,
		apiServer: api.NewServer(engine, scheduler, repos.Journal, cfg.API.Port),
		apiErr:    make(chan error, 1),
	}, nil
}

// Start starts polling, the auto-wipe job and the API server
func (s *BotServer) Start(ctx context.Context) {
	s.engine.Start(ctx)
	s.scheduler.Start()
	fmt.Printf("[Server] Auto-wipe %s, next run %s\n",
		s.scheduler.Schedule().Rule(), s.scheduler.NextRun().Format("2006-01-02 15:04"))

	go func() {
		if err := s.apiServer.Start(); err != nil {
			fmt.Printf("[Server] API server error: %v\n", err)
			s.apiErr <- err
		}
	}()
}

// APIErrors reports a failed API listener
func (s *BotServer) APIErrors() <-chan error {
	return s.apiErr
}

// Stop shuts down in reverse dependency order
func (s *BotServer) Stop() {
	s.scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.apiServer.Stop(ctx); err != nil {
		fmt.Printf("[Server] API server shutdown error: %v\n", err)
	}

	s.engine.Stop()

	if err := s.repos.Close(); err != nil {
		fmt.Printf("[Server] Failed to close repositories: %v\n", err)
	}
}
