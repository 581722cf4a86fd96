package ws

import (
	"encoding/json"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans survey events out to the admin connections watching each survey.
// The subscriber maps are owned by the run goroutine.
type Hub struct {
	watchers map[string]map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}

	logger *zap.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	SurveyID string
	AdminID  string
	Send     chan []byte
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SurveyID string
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		watchers:   make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			if h.watchers[conn.SurveyID] == nil {
				h.watchers[conn.SurveyID] = make(map[*Connection]struct{})
			}
			h.watchers[conn.SurveyID][conn] = struct{}{}
			h.logger.Debug("survey watcher connected",
				zap.String("surveyId", conn.SurveyID), zap.String("adminId", conn.AdminID))

		case conn := <-h.unregister:
			conns, ok := h.watchers[conn.SurveyID]
			if !ok {
				continue
			}
			if _, ok := conns[conn]; ok {
				delete(conns, conn)
				close(conn.Send)
				if len(conns) == 0 {
					delete(h.watchers, conn.SurveyID)
				}
				h.logger.Debug("survey watcher disconnected",
					zap.String("surveyId", conn.SurveyID), zap.String("adminId", conn.AdminID))
			}

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Error("failed to encode websocket message", zap.Error(err))
				continue
			}
			for conn := range h.watchers[msg.SurveyID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}

		case <-h.done:
			for _, conns := range h.watchers {
				for conn := range conns {
					close(conn.Send)
				}
			}
			h.watchers = nil
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Close stops the hub and closes every watcher's send channel
func (h *Hub) Close() {
	close(h.done)
}

// BroadcastToSurvey sends a message to all watchers of a survey (implements service.Broadcaster)
func (h *Hub) BroadcastToSurvey(surveyID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode websocket payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	msg := &BroadcastMessage{
		SurveyID: surveyID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping message",
			zap.String("surveyId", surveyID), zap.String("type", msgType))
	}
}
