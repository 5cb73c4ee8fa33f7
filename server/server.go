package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	uuid "github.com/satori/go.uuid"

	"github.com/minaorangina/shift/catalog"
	"github.com/minaorangina/shift/engine"
	"github.com/minaorangina/shift/game"
	"github.com/minaorangina/shift/protocol"
)

//go:embed static
var staticFS embed.FS

const requestIDHeader = "X-Request-ID"

type ctxKey struct{}

type ChoiceReq struct {
	Side string `json:"side"`
}

type ErrorRes struct {
	Error string         `json:"error"`
	View  *protocol.View `json:"view,omitempty"`
}

// ServerOpts configures a GameServer
type ServerOpts struct {
	AllowedOrigins []string
	Logger         *log.Logger
}

// GameServer presents one session to a local browser
type GameServer struct {
	session  *engine.Session
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *log.Logger
	http.Server
}

func NewID() string {
	return uuid.NewV4().String()
}

// RequestID returns the id assigned to the request by the server
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// NewServer creates a new GameServer. Call Listen to start the websocket hub.
func NewServer(session *engine.Session, opts ServerOpts) *GameServer {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &GameServer{
		session: session,
		hub:     NewHub(session, opts.Logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(opts.AllowedOrigins),
		},
		logger: opts.Logger,
	}

	router := http.NewServeMux()
	router.Handle("/", http.FileServer(http.FS(mustSub(staticFS, "static"))))
	router.HandleFunc("/state", s.HandleState)
	router.HandleFunc("/choice", s.HandleChoice)
	router.HandleFunc("/reset", s.HandleReset)
	router.HandleFunc("/retry", s.HandleRetry)
	router.HandleFunc("/ws", s.HandleWS)

	var handler http.Handler = router
	handler = handlers.CORS(
		handlers.AllowedOrigins(opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(handler)
	handler = withRequestID(handler)
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(opts.Logger))(handler)
	handler = handlers.LoggingHandler(opts.Logger.Writer(), handler)

	s.Handler = handler

	return s
}

// Listen runs the websocket hub until ctx is cancelled
func (g *GameServer) Listen(ctx context.Context) {
	g.hub.Listen(ctx)
}

// ServeHTTP serves http
func (g *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.Handler.ServeHTTP(w, r)
}

func (g *GameServer) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	g.writeView(w, http.StatusOK)
}

func (g *GameServer) HandleChoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var data ChoiceReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil {
		writeParseError(err, w)
		return
	}

	if _, err := g.session.Choose(r.Context(), catalog.Side(data.Side)); err != nil {
		g.writeError(w, r, err)
		return
	}
	g.hub.BroadcastView()
	g.writeView(w, http.StatusOK)
}

func (g *GameServer) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if _, err := g.session.Reset(); err != nil {
		g.writeError(w, r, err)
		return
	}
	g.hub.BroadcastView()
	g.writeView(w, http.StatusOK)
}

func (g *GameServer) HandleRetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if _, err := g.session.Retry(); err != nil {
		g.writeError(w, r, err)
		return
	}
	g.hub.BroadcastView()
	g.writeView(w, http.StatusOK)
}

func (g *GameServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	rawConn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		g.logger.Printf("server: request %s: could not upgrade to websocket: %v", RequestID(r.Context()), err)
		return
	}

	player := NewWSPlayer(NewID(), rawConn, g.hub, g.logger)
	g.logger.Printf("server: request %s is player %s", RequestID(r.Context()), player.ID())
	if !g.hub.Register(player) {
		rawConn.Close()
		return
	}

	go player.writePump()
	go player.readPump()
}

func (g *GameServer) writeView(w http.ResponseWriter, status int) {
	writeJSON(w, status, g.session.View())
}

func (g *GameServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		g.logger.Printf("server: request %s: %v", RequestID(r.Context()), err)
	}
	view := g.session.View()
	writeJSON(w, status, ErrorRes{Error: err.Error(), View: &view})
}

// statusFor maps session errors to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrUnknownSide):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrTurnInProgress),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrNoCurrentCard),
		errors.Is(err, game.ErrNotPaused):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrUnavailable),
		errors.Is(err, engine.ErrLoading):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	bytes, err := json.Marshal(payload)
	if err != nil {
		log.Println(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
}

func writeParseError(err error, w http.ResponseWriter) {
	w.Header().Add("Content-Type", "text/plain")
	w.WriteHeader(http.StatusBadRequest)
	if err == io.EOF {
		w.Write([]byte("Missing body"))
		return
	}
	w.Write([]byte("Malformed body"))
}

// withRequestID tags every request with an id, reusing the caller's if it sent one
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = NewID()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
