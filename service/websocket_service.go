package service

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/regulens/standards-rag/types"
)

// WebSocketService streams indexing progress to operator clients while a
// reindex runs.
type WebSocketService struct {
	indexing *IndexingService
	upgrader websocket.Upgrader
}

func NewWebSocketService(indexing *IndexingService) *WebSocketService {
	return &WebSocketService{
		indexing: indexing,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

// HandleReindex upgrades the connection, runs one reindex pass and
// streams a progress record per document, ending with the pass summary.
func (s *WebSocketService) HandleReindex(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()
	conn.SetWriteDeadline(time.Now().Add(10 * time.Minute))

	progress := func(p types.IndexingProgress) {
		msg := types.WebSocketResponse{
			Type:    types.TypeWebsocketProgress,
			Payload: p,
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Println("Write error:", err)
		}
	}

	summary, err := s.indexing.Reindex(r.Context(), progress)
	if err != nil {
		conn.WriteJSON(types.WebSocketResponse{
			Type:    types.TypeWebsocketError,
			Payload: err.Error(),
		})
		return
	}
	if err := conn.WriteJSON(types.WebSocketResponse{
		Type:    types.TypeWebsocketSummary,
		Payload: summary,
	}); err != nil {
		log.Println("Write error:", err)
	}
}
