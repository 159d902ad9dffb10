// Package twitch hosts the pyramid bot in Twitch chat over IRC on WebSocket.
package twitch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"pyramid-bot/internal/bot"
	"pyramid-bot/internal/chat"
	"pyramid-bot/internal/dispatch"
	"pyramid-bot/pkg/retrylimit"
)

// DefaultURL is Twitch's IRC WebSocket endpoint.
const DefaultURL = "wss://irc-ws.chat.twitch.tv:443"

var (
	// ErrLoginFailed is returned when Twitch rejects the token; redialing cannot fix it.
	ErrLoginFailed = errors.New("twitch login authentication failed")

	errReconnect = errors.New("server requested reconnect")
)

// Twitch allows 20 chat lines per 30 seconds for regular accounts.
const (
	DefaultSendInterval = 1500 * time.Millisecond
	DefaultSendBurst    = 20
)

type Config struct {
	URL      string
	Token    string // oauth token, with or without the "oauth:" prefix
	Nick     string
	Channels []string

	PrivilegedBadges []string // badges whose pyramids at minimum height do not count
	ModeratorBadges  []string // badges allowed to run moderator-only commands
	QueueSize        int

	SendInterval time.Duration // minimum spacing of chat lines once the burst is spent
	SendBurst    int

	RedialAttempts int           // connections tried by Serve, 10 when zero
	RedialDelay    time.Duration // first wait between connections, doubling up to a minute
}

// Client is one IRC connection serving all configured channels.
type Client struct {
	cfg     Config
	handler *bot.Bot

	dispatch *dispatch.Manager
	limiter  *rate.Limiter

	writeMu sync.Mutex
	conn    *websocket.Conn
}

// NewClient creates a Twitch host for handler.
func NewClient(cfg Config, handler *bot.Bot) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.SendInterval <= 0 {
		cfg.SendInterval = DefaultSendInterval
	}
	if cfg.SendBurst <= 0 {
		cfg.SendBurst = DefaultSendBurst
	}
	cfg.Nick = strings.ToLower(cfg.Nick)
	if cfg.RedialAttempts <= 0 {
		cfg.RedialAttempts = 10
	}
	if cfg.RedialDelay <= 0 {
		cfg.RedialDelay = time.Second
	}
	return &Client{
		cfg:     cfg,
		handler: handler,
		limiter: rate.NewLimiter(rate.Every(cfg.SendInterval), cfg.SendBurst),
	}
}

// Serve runs connections until ctx is cancelled, redialing after dropped
// connections and RECONNECT requests. It gives up on ErrLoginFailed or when
// the redial attempts are spent.
func (c *Client) Serve(ctx context.Context) error {
	cfg := retrylimit.Config{
		MaxAttempts:  c.cfg.RedialAttempts,
		InitialDelay: c.cfg.RedialDelay,
		MaxDelay:     time.Minute,
		Multiplier:   2,
		Jitter:       true,
		Retryable: func(err error) bool {
			return ctx.Err() == nil && !errors.Is(err, ErrLoginFailed)
		},
		OnRetry: func(attempt int, err error) {
			log.Printf("[WARN] Twitch connection %d lost: %v, redialing", attempt, err)
		},
	}
	err := retrylimit.Do(ctx, cfg, nil, func() error { return c.Run(ctx) })
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Run connects, joins the channels and serves one connection until ctx is
// cancelled or the connection fails. Channel state is dropped when it ends.
func (c *Client) Run(ctx context.Context) error {
	c.dispatch = dispatch.NewManager(dispatch.Options{
		QueueSize: c.cfg.QueueSize,
		OnStop:    c.handler.Engine().Drop,
	}, func(ctx context.Context, msg chat.Message) {
		c.handler.Handle(ctx, c, msg)
	})
	// queued handlers may be waiting on the send limiter
	defer c.dispatch.Abort()

	d := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := d.DialContext(ctx, c.cfg.URL, http.Header{})
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
			return
		}
		c.writeMu.Lock()
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second)) //nolint:errcheck
		c.writeMu.Unlock()
		conn.Close()
	}()

	if err := c.login(); err != nil {
		return err
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				log.Println("[INFO] Twitch connection closed")
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		for _, raw := range strings.Split(string(data), "\r\n") {
			if raw == "" {
				continue
			}
			l, err := ParseLine(raw)
			if err != nil {
				log.Printf("[WARN] Unparseable IRC line %q: %v", raw, err)
				continue
			}
			if err := c.handleLine(ctx, l); err != nil {
				return err
			}
		}
	}
}

func (c *Client) login() error {
	token := c.cfg.Token
	if !strings.HasPrefix(token, "oauth:") {
		token = "oauth:" + token
	}
	lines := []string{
		"CAP REQ :twitch.tv/tags twitch.tv/commands",
		"PASS " + token,
		"NICK " + c.cfg.Nick,
	}
	for _, ch := range c.cfg.Channels {
		lines = append(lines, "JOIN #"+strings.TrimPrefix(ch, "#"))
	}
	for _, l := range lines {
		if err := c.send(l); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}
	log.Printf("[INFO] Connecting to: %v", c.cfg.Channels)
	return nil
}

func (c *Client) handleLine(ctx context.Context, l Line) error {
	switch l.Command {
	case "PING":
		return c.send("PONG :" + l.Trailing())
	case "RECONNECT":
		return errReconnect
	case "NOTICE":
		if strings.Contains(strings.ToLower(l.Trailing()), "authentication failed") {
			return ErrLoginFailed
		}
		log.Printf("[INFO] NOTICE %s: %s", l.Param(0), l.Trailing())
	case "001":
		log.Printf("[INFO] ✅ Twitch bot %s is running.", c.cfg.Nick)
	case "JOIN":
		if strings.EqualFold(l.Nick(), c.cfg.Nick) {
			log.Printf("[INFO] Joined %s", l.Param(0))
		}
	case "PART":
		if strings.EqualFold(l.Nick(), c.cfg.Nick) {
			if err := c.dispatch.Stop(l.Param(0)); err == nil {
				log.Printf("[INFO] Parted %s, pyramid state dropped", l.Param(0))
			}
		}
	case "PRIVMSG":
		msg, ok := c.toMessage(l)
		if !ok {
			return nil
		}
		if err := c.dispatch.Submit(ctx, msg); err != nil && ctx.Err() == nil {
			log.Printf("[ERR] Failed to queue message in %s: %v", msg.Channel, err)
		}
	}
	return nil
}

// toMessage converts a PRIVMSG. Own messages are dropped.
func (c *Client) toMessage(l Line) (chat.Message, bool) {
	sender := l.Nick()
	if name := l.Tags["display-name"]; name != "" {
		sender = name
	}
	if strings.EqualFold(l.Nick(), c.cfg.Nick) {
		return chat.Message{}, false
	}

	held := badges(l.Tags["badges"])
	has := func(wanted []string) bool {
		for _, b := range held {
			if slices.Contains(wanted, b) {
				return true
			}
		}
		return false
	}

	msg := chat.Message{
		Channel:    l.Param(0),
		SenderID:   l.Tags["user-id"],
		Sender:     sender,
		Text:       l.Trailing(),
		Privileged: has(c.cfg.PrivilegedBadges),
		Moderator:  l.Tags["mod"] == "1" || has(c.cfg.ModeratorBadges),
		Received:   time.Now(),
	}
	return msg, true
}

// Emit implements chat.Emitter. Lines wait for the send rate limit.
func (c *Client) Emit(ctx context.Context, in chat.Intent) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	switch in.Kind {
	case chat.IntentSendText:
		return c.send(fmt.Sprintf("PRIVMSG %s :%s", in.Channel, singleLine(in.Content)))
	case chat.IntentTimeout:
		secs := int(in.Duration / time.Second)
		if secs < 1 {
			secs = 1
		}
		return c.send(fmt.Sprintf("PRIVMSG %s :/timeout %s %d", in.Channel, chat.NormalizeUser(in.User), secs))
	default:
		return fmt.Errorf("unsupported intent %v", in.Kind)
	}
}

func (c *Client) send(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return errors.New("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)) //nolint:errcheck
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(line+"\r\n")); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func singleLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
