package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/teamcal-dev/teamcal/internal/types"
)

var (
	teamClients   = make(map[string]map[*websocket.Conn]bool)
	teamClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BroadcastTeamRefresh tells every connected calendar view of the team
// to reload its schedule data.
func BroadcastTeamRefresh(teamID string) {
	teamClientsMu.RLock()
	clients, exists := teamClients[teamID]
	if !exists || len(clients) == 0 {
		teamClientsMu.RUnlock()
		return
	}

	// Copy the connection set so the lock isn't held while writing
	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	teamClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(map[string]string{
			"type":    "refresh",
			"message": "Calendar data updated",
			"team_id": teamID,
		})

		if err != nil {
			log.Printf("Failed to broadcast refresh to client: %v", err)
			teamClientsMu.Lock()
			if clients, exists := teamClients[teamID]; exists {
				delete(clients, conn)
				if len(clients) == 0 {
					delete(teamClients, teamID)
				}
			}
			teamClientsMu.Unlock()
			conn.Close()
		}
	}
}

func WebSocket(c *gin.Context) {
	teamID := c.Param("team_id")

	if teamID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Team ID is required"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	teamClientsMu.Lock()
	if teamClients[teamID] == nil {
		teamClients[teamID] = make(map[*websocket.Conn]bool)
	}
	teamClients[teamID][conn] = true
	teamClientsMu.Unlock()

	defer func() {
		teamClientsMu.Lock()

		if clients, exists := teamClients[teamID]; exists {
			delete(clients, conn)

			if len(clients) == 0 {
				delete(teamClients, teamID)
			}
		}

		teamClientsMu.Unlock()
		conn.Close()

		log.Printf("WebSocket connection closed for team %s", teamID)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":    "connected",
		"message": "WebSocket connection established",
		"team_id": teamID,
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set write deadline for team %s: %v", teamID, err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Ping failed for team %s: %v", teamID, err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for team %s: %v", teamID, err)
			break
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for team %s: %v", teamID, err)
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			log.Printf("Received message from client in team %s: %s", teamID, string(message))
		case websocket.PongMessage:
			log.Printf("Received pong from team %s", teamID)
		}
	}
}
