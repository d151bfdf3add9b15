package testsupport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// DefaultPollWait is how long a poll request waits for new frames.
const DefaultPollWait = 2 * time.Second

// ServerOptions configures a Server.
type ServerOptions struct {
	PollWait time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

// Server is the reminder backend: the four chat destinations plus the push
// endpoints.
type Server struct {
	echo     *echo.Echo
	hub      *Hub
	store    *ReminderStore
	upgrader websocket.Upgrader
	pollWait time.Duration
	now      func() time.Time
	logger   *slog.Logger

	// Published frames, indexed by poll cursor.
	mu      sync.Mutex
	frames  []protocol.Frame
	changed chan struct{}
}

// MessageRequest is the body of every destination request.
type MessageRequest struct {
	Message string `json:"message"`
}

// MessageResponse is the body of a text reply.
type MessageResponse struct {
	Response string `json:"response"`
}

// ListResponse is the body of a /list_reminders reply.
type ListResponse struct {
	Reminders []protocol.Reminder `json:"reminders"`
}

// NewServer creates a server backed by store, fanning frames out through hub.
func NewServer(store *ReminderStore, hub *Hub, opts ServerOptions) *Server {
	if opts.PollWait <= 0 {
		opts.PollWait = DefaultPollWait
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			opts.Logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	s := &Server{
		echo:  e,
		hub:   hub,
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		pollWait: opts.PollWait,
		now:      opts.Now,
		logger:   opts.Logger,
		frames:   []protocol.Frame{},
		changed:  make(chan struct{}),
	}

	e.GET("/health", s.handleHealth)
	e.POST(string(protocol.DestinationChat), s.handleChat)
	e.POST(string(protocol.DestinationAddReminder), s.handleAddReminder)
	e.GET(string(protocol.DestinationListReminders), s.handleListReminders)
	e.POST(string(protocol.DestinationListReminders), s.handleListReminders)
	e.POST(string(protocol.DestinationDeleteReminder), s.handleDeleteReminder)
	e.GET("/push", s.handleWebSocket)
	e.GET("/push/poll", s.handlePoll)

	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Notify publishes a reminder_notification carrying message to every
// subscriber.
func (s *Server) Notify(message string) error {
	frame, err := protocol.NewFrame(protocol.EventReminderNotification, protocol.NewNotification(message))
	if err != nil {
		return err
	}
	return s.Publish(frame)
}

// Publish sends frame to websocket subscribers and queues it for pollers.
func (s *Server) Publish(frame protocol.Frame) error {
	s.mu.Lock()
	s.frames = append(s.frames, frame)
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()

	return s.hub.BroadcastJSON(frame)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"connections": s.hub.ConnectionCount(),
	})
}

func bindMessage(c echo.Context) (string, error) {
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return req.Message, nil
}

func (s *Server) handleChat(c echo.Context) error {
	message, err := bindMessage(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Response: "You said: " + message})
}

func (s *Server) handleAddReminder(c echo.Context) error {
	message, err := bindMessage(c)
	if err != nil {
		return err
	}

	task, due, ok := ParseReminder(message, s.now())
	if !ok {
		return c.JSON(http.StatusOK, MessageResponse{
			Response: "I couldn't understand the date/time. Try using 'Remind me to call at 11:30 PM'.",
		})
	}

	reminder, err := s.store.Add(c.Request().Context(), task, due)
	if err != nil {
		s.logger.Error("failed to add reminder", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to add reminder"})
	}

	return c.JSON(http.StatusOK, MessageResponse{Response: "Reminder added for " + reminder.Time + "!"})
}

func (s *Server) handleListReminders(c echo.Context) error {
	reminders, err := s.store.List(c.Request().Context())
	if err != nil {
		s.logger.Error("failed to list reminders", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list reminders"})
	}
	return c.JSON(http.StatusOK, ListResponse{Reminders: reminders})
}

func (s *Server) handleDeleteReminder(c echo.Context) error {
	message, err := bindMessage(c)
	if err != nil {
		return err
	}

	deleted, err := s.store.DeleteMatching(c.Request().Context(), strings.TrimSpace(message))
	if err != nil {
		s.logger.Error("failed to delete reminder", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete reminder"})
	}
	if !deleted {
		return c.JSON(http.StatusOK, MessageResponse{Response: "Reminder not found!"})
	}
	return c.JSON(http.StatusOK, MessageResponse{Response: "Reminder deleted!"})
}

func (s *Server) handleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", "error", err)
		return err
	}

	conn := s.hub.NewConnection(ws)
	if !s.hub.Register(conn) {
		ws.Close()
		return nil
	}

	go s.hub.writePump(conn)
	go s.hub.readPump(conn)
	return nil
}

// handlePoll returns frames published after cursor, waiting up to the poll
// wait for one to arrive. Without a cursor it returns only the current
// cursor.
func (s *Server) handlePoll(c echo.Context) error {
	param := c.QueryParam("cursor")
	if param == "" {
		s.mu.Lock()
		cursor := int64(len(s.frames))
		s.mu.Unlock()
		return c.JSON(http.StatusOK, protocol.PollResponse{Events: []protocol.Frame{}, Cursor: cursor})
	}

	cursor, err := strconv.ParseInt(param, 10, 64)
	if err != nil || cursor < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid cursor"})
	}

	timer := time.NewTimer(s.pollWait)
	defer timer.Stop()

	for {
		s.mu.Lock()
		total := int64(len(s.frames))
		if cursor > total {
			cursor = total
		}
		if cursor < total {
			events := append([]protocol.Frame(nil), s.frames[cursor:]...)
			s.mu.Unlock()
			return c.JSON(http.StatusOK, protocol.PollResponse{Events: events, Cursor: total})
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-timer.C:
			return c.JSON(http.StatusOK, protocol.PollResponse{Events: []protocol.Frame{}, Cursor: total})
		case <-c.Request().Context().Done():
			return nil
		}
	}
}
