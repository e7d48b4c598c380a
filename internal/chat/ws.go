package chat

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type    string `json:"type"` // "message"
	AgentID string `json:"agent_id"`
	Content string `json:"content"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type    string `json:"type"` // "response" or "error"
	AgentID string `json:"agent_id"`
	Content string `json:"content"`
}

func (s *Service) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("chat: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("chat: websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			sendError(conn, "", "invalid message format")
			continue
		}

		if req.Content == "" {
			sendError(conn, req.AgentID, "content is required")
			continue
		}

		switch req.Type {
		case "message":
			s.handleWSMessage(conn, r, req)
		default:
			sendError(conn, req.AgentID, "unknown message type: "+req.Type)
		}
	}
}

func (s *Service) handleWSMessage(conn *websocket.Conn, r *http.Request, req wsRequest) {
	session := s.SessionFor(req.AgentID)
	if session == nil {
		sendError(conn, req.AgentID, "agent not found")
		return
	}

	reply, err := session.Ask(r.Context(), req.Content)
	if err != nil {
		sendError(conn, req.AgentID, err.Error())
		return
	}
	if s.events != nil {
		s.events.Record("chat_message", "agent", req.AgentID, "")
	}

	sendResponse(conn, wsResponse{
		Type:    "response",
		AgentID: req.AgentID,
		Content: reply.Content,
	})
}

func sendResponse(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("chat: websocket write: %v", err)
	}
}

func sendError(conn *websocket.Conn, agentID, message string) {
	resp := wsResponse{
		Type:    "error",
		AgentID: agentID,
		Content: message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("chat: websocket write error: %v", err)
	}
}
