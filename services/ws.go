package services

import (
	"net/http"

	"github.com/GenanawMekete/final-bingo/store"
	"github.com/GenanawMekete/final-bingo/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SessionHandler upgrades `GET /ws?player_id=..&name=..` connections
// and attaches them to the gateway. Identity is assumed pre-validated
// upstream; the id is treated as opaque, and a missing one gets a
// fresh uuid so anonymous clients can still play.
type SessionHandler struct {
	gateway  *Gateway
	profiles *store.ProfileStore
}

func NewSessionHandler(gateway *Gateway, profiles *store.ProfileStore) *SessionHandler {
	return &SessionHandler{gateway: gateway, profiles: profiles}
}

func (h *SessionHandler) Handle(c *gin.Context) {
	playerID := c.Query("player_id")
	if playerID == "" {
		playerID = uuid.NewString()
	}
	name := c.Query("name")

	profile, err := h.profiles.GetOrCreatePlayer(playerID, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load player profile"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("[WS] upgrade error: %v", err)
		return
	}

	client := newClient(conn, h.gateway, profile.ExternalID, profile.Name)
	logger.Infof("[WS] new client: player=%s name=%q", profile.ExternalID, profile.Name)

	go client.writePump()
	go client.readPump()
}
