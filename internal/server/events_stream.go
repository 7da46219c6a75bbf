package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/salescast/internal/events"
	"github.com/aristath/salescast/internal/utils"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

const (
	streamBufferSize   = 100
	streamWriteTimeout = 10 * time.Second
	heartbeatInterval  = 30 * time.Second
)

// EventsStreamHandler streams bus events to WebSocket clients.
type EventsStreamHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsStreamHandler creates a new events stream handler.
func NewEventsStreamHandler(bus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		bus: bus,
		log: log.With().Str("component", "events_stream").Logger(),
	}
}

// streamFrame is the JSON shape sent over the wire.
type streamFrame struct {
	Type      string      `json:"type"`
	Module    string      `json:"module,omitempty"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// ServeHTTP handles GET /api/events/ws. The optional `types` query
// parameter is a comma-separated list of event types to subscribe to;
// without it the client receives everything.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subscribed := h.subscriptionTypes(r.URL.Query().Get("types"))

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	h.log.Info().Int("types", len(subscribed)).Msg("Client connected to event stream")

	// Buffer so a slow client cannot stall the bus; full buffer drops.
	eventChan := make(chan *events.Event, streamBufferSize)
	forward := func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	}

	unsubscribes := make([]func(), 0, len(subscribed))
	for _, eventType := range subscribed {
		unsubscribes = append(unsubscribes, h.bus.Subscribe(eventType, forward))
	}
	defer func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}()

	// The stream is write-only; CloseRead watches for the client closing
	// the connection and cancels the context when it does.
	ctx := conn.CloseRead(r.Context())

	if err := h.writeFrame(ctx, conn, streamFrame{
		Type:      "connected",
		Timestamp: time.Now().Format(time.RFC3339),
	}); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from event stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case event := <-eventChan:
			frame := streamFrame{
				Type:      string(event.Type),
				Module:    event.Module,
				Timestamp: event.Timestamp.Format(time.RFC3339),
				Data:      event.Data,
			}
			if err := h.writeFrame(ctx, conn, frame); err != nil {
				h.log.Debug().Err(err).Msg("Write failed, closing event stream")
				return
			}

		case <-heartbeat.C:
			frame := streamFrame{
				Type:      "heartbeat",
				Timestamp: time.Now().Format(time.RFC3339),
			}
			if err := h.writeFrame(ctx, conn, frame); err != nil {
				h.log.Debug().Err(err).Msg("Heartbeat failed, closing event stream")
				return
			}
		}
	}
}

// subscriptionTypes resolves the types filter to concrete event types.
func (h *EventsStreamHandler) subscriptionTypes(filter string) []events.EventType {
	names := utils.ParseCSV(filter)
	if len(names) == 0 {
		return events.KnownTypes()
	}

	types := make([]events.EventType, 0, len(names))
	for _, name := range names {
		types = append(types, events.EventType(name))
	}
	return types
}

func (h *EventsStreamHandler) writeFrame(ctx context.Context, conn *websocket.Conn, frame streamFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()

	return conn.Write(writeCtx, websocket.MessageText, data)
}
