package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/elguiriashing/amsterdam/internal/biz/domain"
	"github.com/elguiriashing/amsterdam/internal/biz/repo"
	"github.com/elguiriashing/amsterdam/internal/biz/usecase"
	"github.com/elguiriashing/amsterdam/internal/service"
)

// Engine is the part of the wipe engine exposed over HTTP
type Engine interface {
	ChatID() int64
	TriggerWipe(reason string) (*domain.WipeRun, error)
	Notify(ctx context.Context, text string) (int64, error)
	Status(ctx context.Context) usecase.StatusView
	State() service.EngineState
}

// Server provides the local HTTP API used by collaborators (CRUD backend, MCP tools, CLI)
type Server struct {
	engine    Engine
	scheduler service.ScheduleController
	journal   repo.WipeJournalRepo // nil when the journal is disabled

	server *http.Server
	port   int
}

// NewServer creates a new API server
func NewServer(engine Engine, scheduler service.ScheduleController, journal repo.WipeJournalRepo, port int) *Server {
	s := &Server{
		engine:    engine,
		scheduler: scheduler,
		journal:   journal,
		port:      port,
	}
	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: s.Handler(),
	}
	return s
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/notify", s.handleNotify)
	mux.HandleFunc("/api/wipe", s.handleWipe)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/schedule", s.handleSchedule)
	mux.HandleFunc("/api/wipes", s.handleWipes)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

// Start starts the HTTP server on the loopback interface; it blocks until Stop
func (s *Server) Start() error {
	fmt.Printf("[API] Starting HTTP server on port %d\n", s.port)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// GetPort returns the server port
func (s *Server) GetPort() int {
	return s.port
}

// ============ Handlers ============

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	msgID, err := s.engine.Notify(r.Context(), req.Text)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NotifyResponse{MessageID: msgID})
}

func (s *Server) handleWipe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	run, err := s.engine.TriggerWipe(domain.WipeReasonAPI)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ToWipeRun(run))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	view := s.engine.Status(r.Context())
	state := s.engine.State()

	writeJSON(w, http.StatusOK, StatusResponse{
		ChatID:          s.engine.ChatID(),
		Uptime:          usecase.FormatUptime(view.Uptime),
		UptimeSec:       int64(view.Uptime.Seconds()),
		Tracked:         state.Tracked,
		Cursor:          state.Cursor,
		Running:         state.Running,
		PollingInFlight: state.PollingInFlight,
		WipeInFlight:    state.WipeInFlight,
		WipePending:     state.WipePending,
		Schedule:        s.schedule(),
		LastWipe:        ToWipeRun(view.LastWipe),
	})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.schedule())
	case http.MethodPut, http.MethodPost:
		var req ScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		schedule, err := domain.NewWipeSchedule(req.Hours, req.Time)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.scheduler.Reconfigure(schedule); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, s.schedule())
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleWipes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	resp := WipesResponse{Wipes: []*WipeRun{}}
	if s.journal != nil {
		runs, err := s.journal.List(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, run := range runs {
			resp.Wipes = append(resp.Wipes, ToWipeRun(run))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) schedule() Schedule {
	current := s.scheduler.Schedule()
	out := Schedule{
		Hours: current.IntervalHours,
		Time:  current.TimeOfDay(),
		Rule:  current.Rule().String(),
	}
	if next := s.scheduler.NextRun(); !next.IsZero() {
		out.NextRun = &next
	}
	return out
}

// ============ Helpers ============

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrWipeInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEngineStopped):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
