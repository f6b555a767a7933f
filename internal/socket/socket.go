// Package socket maintains the persistent push channel to the ACP
// backend: a WebSocket connection authenticated with the seller's
// wallet address, emitting onNewTask/onEvaluate events to the
// dispatcher. It owns reconnection, disconnect-duration alerting, and
// heartbeat logging.
package socket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/obscura-network/acp-seller-runtime/internal/alert"
	"github.com/obscura-network/acp-seller-runtime/internal/model"
)

const (
	reconnectBaseDelay   = 1 * time.Second
	reconnectMaxDelay    = 30 * time.Second
	heartbeatInterval    = 30 * time.Second
	monitorInterval      = 5 * time.Second
	disconnectAlertAfter = 120 * time.Second
	failedReconnectLimit = 3
)

// JobHandler receives decoded onNewTask/onEvaluate events.
type JobHandler func(ctx context.Context, raw model.RawJob, source string)

// Listener owns a reconnecting WebSocket client.
type Listener struct {
	url        string
	walletAddr string
	handler    JobHandler
	notifier   *alert.Notifier

	mu               sync.Mutex
	conn             *websocket.Conn
	connected        bool
	disconnectedAt   time.Time
	reconnectFails   int
	alertTriggered   bool
}

// New builds a Listener against wsURL, authenticating with
// walletAddr. notifier may be a disabled (no-op) Notifier.
func New(wsURL, walletAddr string, handler JobHandler, notifier *alert.Notifier) *Listener {
	return &Listener{
		url:        wsURL,
		walletAddr: walletAddr,
		handler:    handler,
		notifier:   notifier,
	}
}

// incomingEvent is the envelope the backend sends on the socket: an
// event name plus an arbitrary JSON payload. The envelope carries no
// ack field and the listener sends no acknowledgement back over the
// connection.
type incomingEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Run connects and reconnects until ctx is cancelled, driving the
// heartbeat/disconnect monitor alongside the read loop.
func (l *Listener) Run(ctx context.Context) {
	go l.monitorLoop(ctx)

	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := l.connectAndRead(ctx); err != nil {
			log.Warn().Err(err).Msg("socket: connection lost")
		}

		if ctx.Err() != nil {
			return
		}

		l.markDisconnected()
		attempt++
		delay := backoffDelay(attempt)
		log.Info().Dur("delay", delay).Int("attempt", attempt).Msg("socket: reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func backoffDelay(attempt int) time.Duration {
	d := reconnectBaseDelay << uint(attempt-1)
	if d <= 0 || d > reconnectMaxDelay {
		return reconnectMaxDelay
	}
	return d
}

func (l *Listener) markDisconnected() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.connected {
		l.connected = false
		l.disconnectedAt = time.Now()
	}
	l.reconnectFails++
}

func (l *Listener) markConnected() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = true
	l.reconnectFails = 0
	wasTriggered := l.alertTriggered
	l.alertTriggered = false
	l.disconnectedAt = time.Time{}
	if wasTriggered {
		go l.notifier.Resolve(context.Background(), alert.DedupKey("socket-disconnect"))
	}
}

func (l *Listener) connectAndRead(ctx context.Context) error {
	header := map[string][]string{
		"X-Wallet-Address": {l.walletAddr},
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, header)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
	l.markConnected()
	log.Info().Msg("socket: connected")
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var evt incomingEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			log.Warn().Err(err).Msg("socket: malformed event envelope")
			continue
		}

		switch evt.Event {
		case "roomJoined":
			log.Debug().Msg("socket: room joined")
		case "onNewTask", "onEvaluate":
			var job model.RawJob
			if err := json.Unmarshal(evt.Payload, &job); err != nil {
				log.Warn().Err(err).Str("event", evt.Event).Msg("socket: malformed job payload")
				continue
			}
			l.handler(ctx, job, "socket")
		default:
			log.Debug().Str("event", evt.Event).Msg("socket: ignoring unrecognized event")
		}
	}
}

func (l *Listener) monitorLoop(ctx context.Context) {
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	monitor := time.NewTicker(monitorInterval)
	defer monitor.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			l.logHeartbeat()
		case <-monitor.C:
			l.checkDisconnectThreshold(ctx)
		}
	}
}

func (l *Listener) logHeartbeat() {
	l.mu.Lock()
	connected := l.connected
	l.mu.Unlock()
	log.Info().Bool("connected", connected).Msg("socket: heartbeat")
}

func (l *Listener) checkDisconnectThreshold(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.connected || l.alertTriggered {
		return
	}

	exceededDuration := !l.disconnectedAt.IsZero() && time.Since(l.disconnectedAt) >= disconnectAlertAfter
	exceededAttempts := l.reconnectFails >= failedReconnectLimit

	if exceededDuration || exceededAttempts {
		l.alertTriggered = true
		go l.notifier.Trigger(ctx, alert.DedupKey("socket-disconnect"), "socket-listener", "ACP socket listener disconnected")
	}
}
