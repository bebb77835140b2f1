package server

import (
	"net/http"

	"github.com/ChizhovVadim/CounterReversi/pkg/engine"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsResponse struct {
	Type    string         `json:"type"`
	Payload *searchInfoDTO `json:"payload,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// handleSearchStream reads search requests and answers each one with an
// "info" message per completed round and a final "result".
func (s *Server) handleSearchStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		var req searchRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug().Err(err).Msg("websocket read")
			}
			return
		}
		var params, timeout, err = req.params()
		if err != nil {
			if conn.WriteJSON(wsResponse{Type: "error", Error: err.Error()}) != nil {
				return
			}
			continue
		}
		var writeErr error
		params.Progress = func(si engine.SearchInfo) {
			if writeErr != nil {
				return
			}
			var dto = toDTO(si)
			writeErr = conn.WriteJSON(wsResponse{Type: "info", Payload: &dto})
		}
		var si = s.search(r.Context(), params, timeout)
		if writeErr != nil {
			return
		}
		var dto = toDTO(si)
		if err := conn.WriteJSON(wsResponse{Type: "result", Payload: &dto}); err != nil {
			return
		}
	}
}
