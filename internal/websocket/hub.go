// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package websocket

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ideaforge/internal/events"
	"github.com/tomtom215/ideaforge/internal/logging"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types.
const (
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
	MessageTypeIdeaAdded      = "idea_added"
	MessageTypeIdeaRejected   = "idea_rejected"
	MessageTypeRatingChanged  = "rating_changed"
	MessageTypeFederatedRound = "federated_round"
	MessageTypeWeightsUpdated = "weights_updated"
	MessageTypeIntegrityAlert = "integrity_alert"
)

// eventMessageTypes selects the pipeline events pushed to clients.
// Recommendations and duplicates are not broadcast.
var eventMessageTypes = map[events.Type]string{
	events.IdeaAdded:       MessageTypeIdeaAdded,
	events.IdeaRejected:    MessageTypeIdeaRejected,
	events.FeedbackApplied: MessageTypeRatingChanged,
	events.FederatedRound:  MessageTypeFederatedRound,
	events.WeightsUpdated:  MessageTypeWeightsUpdated,
	events.IntegrityAlert:  MessageTypeIntegrityAlert,
}

// Message is one websocket frame.
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventData is the payload of messages built from pipeline events.
type EventData struct {
	IdeaID    string         `json:"idea_id,omitempty"`
	Outcome   string         `json:"outcome,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Hub tracks connected clients and fans messages out to them.
// It implements events.Sink and suture.Service.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]bool
	broadcast chan Message
	dropped   atomic.Int64
}

// NewHub creates a hub. Call Serve to start delivery.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]bool),
		broadcast: make(chan Message, 256),
	}
}

// Register adds a client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	logging.Info().Int("total_clients", n).Msg("websocket client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	logging.Info().Int("total_clients", n).Msg("websocket client disconnected")
}

// sendTo queues msg for one client if it is still registered.
func (h *Hub) sendTo(c *Client, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// Serve delivers broadcasts until ctx is canceled, then closes every
// client. Shutdown takes priority over pending broadcasts.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	count := h.ClientCount()
	h.closeAllClients()
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", count).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

// broadcastToClients drops clients whose send buffer is full.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.sortedClients() {
		select {
		case c.send <- message:
		default:
			close(c.send)
			delete(h.clients, c)
			logging.Warn().Uint64("client_id", c.id).Msg("websocket client too slow, disconnected")
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.sortedClients() {
		close(c.send)
		delete(h.clients, c)
	}
}

// Broadcast queues a message for every client without blocking. When the
// queue is full the message is dropped.
func (h *Hub) Broadcast(messageType string, data any) {
	msg := Message{Type: messageType, Data: data, Timestamp: time.Now().UTC()}
	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
	}
}

// Publish implements events.Sink.
func (h *Hub) Publish(_ context.Context, ev events.Event) {
	msgType, ok := eventMessageTypes[ev.Type]
	if !ok {
		return
	}
	h.Broadcast(msgType, EventData{
		IdeaID:    ev.IdeaID,
		Outcome:   ev.Outcome,
		RequestID: ev.RequestID,
		Details:   ev.Data,
	})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many broadcasts were discarded on a full queue.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// MarshalMessage encodes a message as JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
