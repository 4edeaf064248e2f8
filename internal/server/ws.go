// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/jeranaias/termfolio/internal/catalog"
	"github.com/jeranaias/termfolio/internal/commands"
	"github.com/jeranaias/termfolio/internal/render"
	"github.com/jeranaias/termfolio/internal/session"
	"github.com/jeranaias/termfolio/internal/shell"
)

// ============================================================================
// PROTOCOL
// ============================================================================

// Client message types.
const (
	MsgSubmit   = "submit"
	MsgRecall   = "recall"
	MsgComplete = "complete"
)

// Server message types.
const (
	MsgBanner   = "banner"
	MsgEcho     = "echo"
	MsgChunk    = "chunk"
	MsgDone     = "done"
	MsgInput    = "input"
	MsgClear    = "clear"
	MsgTheme    = "theme"
	MsgNavigate = "navigate"
	MsgError    = "error"
)

// Recall directions.
const (
	RecallPrevious = "previous"
	RecallNext     = "next"
)

const (
	maxMessageSize = 4096
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxQueued      = 32
)

// ClientMessage is one message from the page.
type ClientMessage struct {
	Type      string `json:"type"`
	Line      string `json:"line,omitempty"`
	Direction string `json:"direction,omitempty"`
	Input     string `json:"input,omitempty"`
}

// ServerMessage is one message to the page. Only the fields of its type
// are set.
type ServerMessage struct {
	Type    string           `json:"type"`
	HTML    string           `json:"html,omitempty"`
	Line    string           `json:"line,omitempty"`
	Value   *string          `json:"value,omitempty"`
	Name    string           `json:"name,omitempty"`
	Vars    []catalog.CSSVar `json:"vars,omitempty"`
	URL     string           `json:"url,omitempty"`
	DelayMs int64            `json:"delay_ms,omitempty"`
	Message string           `json:"message,omitempty"`
}

var errUnknownMessage = errors.New("unknown message type")

// ============================================================================
// CONNECTION HANDLER
// ============================================================================

// handleWebSocket handles GET /ws: one terminal session per connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)
	if !s.connects.Allow(clientIP) {
		w.Header().Set("Retry-After", retryAfter(s.connects.interval()))
		s.logger.Printf("WS_REJECTED | ip=%s reason=rate_limit", clientIP)
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess, err := s.sessions.Open(cancel)
	if err != nil {
		cancel()
		s.logger.Printf("WS_REJECTED | ip=%s reason=%v", clientIP, err)
		s.writeError(w, http.StatusServiceUnavailable, "terminal is busy, try again later")
		return
	}
	defer s.sessions.Close(sess.ID())

	visitor, fresh := s.visitor(r)
	header := http.Header{}
	if fresh != "" {
		header.Add("Set-Cookie", s.visitorCookie(fresh).String())
	}

	ws, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		// the upgrader has already answered
		cancel()
		s.logger.Printf("WS_UPGRADE_FAILED | ip=%s error=%v", clientIP, err)
		return
	}

	term := s.terminalConfig()
	cmdCtx := commands.NewContext(sess, s.opts.Prefs(visitor), s.opts.Catalog)
	cmdCtx.Logger = s.logger
	cmdCtx.NavigationDelay = term.NavigationDelay()

	c := &connection{
		srv:     s,
		ws:      ws,
		session: sess,
		interp:  shell.New(s.opts.Registry, cmdCtx),
		limiter: rate.NewLimiter(rate.Limit(s.opts.RatePerSecond), s.opts.RateBurst),
	}

	s.logger.Printf("WS_OPEN | session=%s ip=%s", sess.ID(), clientIP)
	c.run(ctx, cancel)
	s.logger.Printf("WS_CLOSE | session=%s ip=%s", sess.ID(), clientIP)
}

// ============================================================================
// CONNECTION
// ============================================================================

// connection drives one interpreter from one WebSocket. Messages are
// handled one at a time on the run goroutine, so a submission is never
// interpreted while earlier output is still being typed.
type connection struct {
	srv     *Server
	ws      *websocket.Conn
	session *session.Session
	interp  *shell.Interpreter
	limiter *rate.Limiter

	writeMu sync.Mutex
}

func (c *connection) run(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	inbox := make(chan ClientMessage, maxQueued)
	go c.readLoop(cancel, inbox)
	go c.pingLoop(ctx)

	if err := c.greet(ctx); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-inbox:
			if err := c.handle(ctx, msg); err != nil {
				return
			}
		}
	}
}

// readLoop decodes client messages into inbox until the socket fails.
func (c *connection) readLoop(cancel context.CancelFunc, inbox chan<- ClientMessage) {
	defer cancel()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.srv.logger.Printf("WS_READ | session=%s error=%v", c.session.ID(), err)
			}
			return
		}
		c.srv.sessions.Touch(c.session.ID())

		if !c.limiter.Allow() {
			c.sendError("Too many requests. Slow down.")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("Malformed message.")
			continue
		}

		select {
		case inbox <- msg:
		default:
			c.sendError("Too many pending requests.")
		}
	}
}

func (c *connection) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// greet applies the startup theme and types the banner.
func (c *connection) greet(ctx context.Context) error {
	if err := c.send(themeMessage(c.interp.StartupTheme())); err != nil {
		return err
	}

	banner := c.toHTML(c.interp.Banner())
	if err := c.send(ServerMessage{Type: MsgBanner, HTML: banner}); err != nil {
		return err
	}
	return c.typeOut(ctx, banner, c.srv.terminalConfig().BannerDelay())
}

func (c *connection) handle(ctx context.Context, msg ClientMessage) error {
	switch msg.Type {
	case MsgSubmit:
		return c.submit(ctx, msg.Line)

	case MsgRecall:
		var (
			line string
			ok   bool
		)
		switch msg.Direction {
		case RecallPrevious:
			line, ok = c.interp.RecallPrevious(msg.Input)
		case RecallNext:
			line, ok = c.interp.RecallNext()
		default:
			return c.send(ServerMessage{Type: MsgError, Message: "Unknown recall direction."})
		}
		if !ok {
			return nil
		}
		return c.send(inputMessage(line))

	case MsgComplete:
		comp := c.interp.Complete(msg.Input)
		if comp.Completed() {
			return c.send(inputMessage(comp.Input))
		}
		listing := comp.Listing()
		if listing == "" {
			return nil
		}
		if err := c.send(ServerMessage{Type: MsgEcho, Line: msg.Input}); err != nil {
			return err
		}
		return c.typeOut(ctx, render.Escape(listing), c.srv.terminalConfig().TypingDelay())

	default:
		c.srv.logger.Printf("WS_MESSAGE | session=%s type=%q: %v", c.session.ID(), msg.Type, errUnknownMessage)
		return c.send(ServerMessage{Type: MsgError, Message: "Unknown message type."})
	}
}

// submit interprets a line and carries out its result: clear, echo,
// theme, typed text, then navigation. Clearing first leaves the clearing
// command visible under the banner.
func (c *connection) submit(ctx context.Context, line string) error {
	out := c.interp.Submit(line)
	res := out.Result

	if res.Clear {
		if err := c.send(ServerMessage{Type: MsgClear}); err != nil {
			return err
		}
	}
	if err := c.send(ServerMessage{Type: MsgEcho, Line: out.Echo}); err != nil {
		return err
	}
	if res.Theme != nil {
		if err := c.send(themeMessage(*res.Theme)); err != nil {
			return err
		}
	}
	if err := c.typeOut(ctx, c.toHTML(res.Text), c.srv.terminalConfig().TypingDelay()); err != nil {
		return err
	}
	if res.Navigate != nil {
		return c.send(ServerMessage{
			Type:    MsgNavigate,
			URL:     res.Navigate.URL,
			DelayMs: res.Navigate.Delay.Milliseconds(),
		})
	}
	return nil
}

// typeOut sends fragment one step per tick followed by done. A zero
// delay sends the fragment in one chunk. Typing stops when ctx is done.
func (c *connection) typeOut(ctx context.Context, fragment string, delay time.Duration) error {
	if fragment != "" {
		if delay <= 0 {
			if err := c.send(ServerMessage{Type: MsgChunk, HTML: fragment}); err != nil {
				return err
			}
		} else if err := c.typeSteps(ctx, render.HTMLSteps(fragment), delay); err != nil {
			return err
		}
	}
	return c.send(ServerMessage{Type: MsgDone})
}

func (c *connection) typeSteps(ctx context.Context, steps []string, delay time.Duration) error {
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for i, step := range steps {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		if err := c.send(ServerMessage{Type: MsgChunk, HTML: step}); err != nil {
			return err
		}
	}
	return nil
}

func (c *connection) toHTML(md string) string {
	out, err := c.srv.html.Render(md)
	if err != nil {
		c.srv.logger.Printf("WS_RENDER | session=%s error=%v", c.session.ID(), err)
		return render.Escape(md)
	}
	return out
}

// send writes one message. Safe for concurrent use.
func (c *connection) send(msg ServerMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(msg)
}

func (c *connection) sendError(message string) {
	if err := c.send(ServerMessage{Type: MsgError, Message: message}); err != nil {
		c.srv.logger.Printf("WS_WRITE | session=%s error=%v", c.session.ID(), err)
	}
}

func themeMessage(t catalog.Theme) ServerMessage {
	return ServerMessage{Type: MsgTheme, Name: t.Name, Vars: t.CSSVars()}
}

func inputMessage(value string) ServerMessage {
	return ServerMessage{Type: MsgInput, Value: &value}
}
