package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/signalwire/sigmond-holyguacamole/pkg/agent"
	"github.com/signalwire/sigmond-holyguacamole/pkg/agent/session"
	"github.com/signalwire/sigmond-holyguacamole/pkg/flow"
	"github.com/signalwire/sigmond-holyguacamole/pkg/menu"
	"github.com/signalwire/sigmond-holyguacamole/pkg/menu/match"
)

var (
	serveListen  string
	serveDataDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve order operations over WebSocket",
	Long: `Serve the operation dispatcher for the voice platform.

Endpoints:
  GET /v1/menu    - catalog as JSON
  GET /v1/ws      - WebSocket; one JSON request per message:
                      {"session_id": "...", "op": "add_item", "args": {...}}
                    each reply is the full operation outcome.

Sessions persist in the data directory and survive restarts; without
--data-dir they are held in memory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveListen != "" {
			cfg.Listen = serveListen
		}
		if serveDataDir != "" {
			cfg.DataDir = serveDataDir
		}
		m, err := loadMenu(cfg)
		if err != nil {
			return err
		}

		store, err := openStore(cfg.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		srv := &server{
			menu:  m,
			disp:  agent.New(m, agent.WithMatcher(match.New(m, match.WithThreshold(cfg.MatchThreshold)))),
			store: store,
			locks: session.NewLocker(),
			log:   slog.Default(),
		}

		mux := http.NewServeMux()
		mux.HandleFunc("GET /v1/menu", srv.handleMenu)
		mux.HandleFunc("GET /v1/ws", srv.handleWS)

		srv.log.Info("listening", "addr", cfg.Listen, "sessions", storeKind(cfg.DataDir))
		return http.ListenAndServe(cfg.Listen, mux)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "session database directory (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func openStore(dir string) (session.Store, error) {
	if dir == "" {
		return session.NewMemory(), nil
	}
	return session.NewBadger(session.BadgerOptions{Dir: dir})
}

func storeKind(dir string) string {
	if dir == "" {
		return "memory"
	}
	return "badger"
}

type server struct {
	menu  *menu.Menu
	disp  *agent.Dispatcher
	store session.Store
	locks *session.Locker
	log   *slog.Logger
}

// request is one operation over the wire. Args is passed through to the
// dispatcher untouched, so repairable JSON from the language model
// survives transit.
type request struct {
	SessionID string          `json:"session_id"`
	Op        flow.Op         `json:"op"`
	Args      json.RawMessage `json:"args,omitempty"`
}

type wireError struct {
	Error string `json:"error"`
}

var upgrader = websocket.Upgrader{
	// The voice platform calls from its own origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	for {
		var req request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("read failed", "err", err)
			}
			return
		}
		if req.SessionID == "" {
			_ = conn.WriteJSON(wireError{Error: "session_id is required"})
			continue
		}

		out, err := s.dispatch(r, &req)
		if err != nil {
			s.log.Error("dispatch failed", "session", req.SessionID, "op", req.Op, "err", err)
			_ = conn.WriteJSON(wireError{Error: err.Error()})
			continue
		}
		if err := conn.WriteJSON(out); err != nil {
			s.log.Warn("write failed", "err", err)
			return
		}
	}
}

// dispatch runs one operation under the session's lock, creating the
// session on first use and persisting it afterwards.
func (s *server) dispatch(r *http.Request, req *request) (*agent.Outcome, error) {
	unlock := s.locks.Lock(req.SessionID)
	defer unlock()

	ctx := r.Context()
	sess, err := s.store.Get(ctx, req.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		sess = session.New(req.SessionID, s.menu)
	} else if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	out := s.disp.Dispatch(req.Op, req.Args, sess)

	if err := s.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return out, nil
}

func (s *server) handleMenu(w http.ResponseWriter, r *http.Request) {
	type itemJSON struct {
		SKU         string     `json:"sku"`
		Name        string     `json:"name"`
		Price       menu.Cents `json:"price"`
		Category    string     `json:"category"`
		Description string     `json:"description,omitempty"`
		Aliases     []string   `json:"aliases,omitempty"`
	}
	items := make([]itemJSON, 0, len(s.menu.Items()))
	for _, it := range s.menu.Items() {
		items = append(items, itemJSON{
			SKU:         it.SKU,
			Name:        it.Name,
			Price:       it.Price,
			Category:    it.Category,
			Description: it.Description,
			Aliases:     it.Aliases,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}
