package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the token query parameter authenticates the socket
	},
}

type RealtimeController struct {
	Hub *realtime.Hub
}

func NewRealtimeController(hub *realtime.Hub) *RealtimeController {
	return &RealtimeController{Hub: hub}
}

// BookingEvents -> websocket stream of booking and table changes
func (rc *RealtimeController) BookingEvents(c *gin.Context) {
	role := c.GetString("role")
	if role == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if role != models.RoleAdmin && role != models.RoleStaff {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	rc.Hub.Register(ws, role)

	// drain until the client goes away
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	rc.Hub.Unregister(ws)
}
