package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/dinein/middlewares"
	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	clientBuffer   = 64
)

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SessionCheck reports whether otp opens a live table session at the restaurant.
type SessionCheck func(ctx context.Context, restaurantID uuid.UUID, otp string) error

// WSHandler serves GET /ws?restaurantId=... and streams that restaurant's events.
// Staff connect with a bearer token (claims set by an upstream middleware),
// customers with ?tableOtp=.
type WSHandler struct {
	hub      *Hub
	pub      Publisher
	sessions SessionCheck
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *Hub, pub Publisher, sessions SessionCheck, allowedOrigins []string, log logrus.FieldLogger) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WSHandler{
		hub:      hub,
		pub:      pub,
		sessions: sessions,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
	}
}

// authorize picks the events the caller may emit, or fails the way the REST
// surface does: a staff token bound to another restaurant is forbidden and an
// anonymous caller needs a live table OTP.
func (h *WSHandler) authorize(r *http.Request, restaurantID uuid.UUID) (map[string]bool, error) {
	if claims, err := middlewares.GetAuthenticatedUser(r); err == nil {
		if claims.Role != models.RoleAdmin && claims.RestaurantID != nil && *claims.RestaurantID != restaurantID {
			return nil, fmt.Errorf("%w: not a member of restaurant %s", models.ErrForbidden, restaurantID)
		}
		return staffEvents, nil
	}
	otp := r.URL.Query().Get("tableOtp")
	if otp == "" || h.sessions == nil {
		return nil, fmt.Errorf("%w: token or tableOtp required", models.ErrUnauthorized)
	}
	if err := h.sessions(r.Context(), restaurantID, otp); err != nil {
		return nil, err
	}
	return customerEvents, nil
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("restaurantId")
	if raw == "" {
		raw = r.URL.Query().Get("restaurant")
	}
	restaurantID, err := uuid.Parse(raw)
	if err != nil {
		utils.WriteError(w, fmt.Errorf("%w: restaurantId is required", models.ErrValidation))
		return
	}
	allowed, err := h.authorize(r, restaurantID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	sub := h.hub.Subscribe(restaurantID, clientBuffer)
	log := h.log.WithFields(logrus.Fields{"restaurant_id": restaurantID, "remote": r.RemoteAddr})
	log.Debug("client connected")

	go h.readPump(conn, sub, restaurantID, allowed, log)
	h.writePump(conn, sub)
	log.Debug("client disconnected")
}

func (h *WSHandler) readPump(conn *websocket.Conn, sub *Subscriber, restaurantID uuid.UUID, allowed map[string]bool, log logrus.FieldLogger) {
	defer h.hub.Unsubscribe(sub)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Debug("websocket read failed")
			}
			return
		}
		if !allowed[msg.Event] {
			log.WithField("event", msg.Event).Debug("ignoring client event")
			continue
		}
		var data any
		if len(msg.Data) > 0 {
			data = msg.Data
		}
		if err := h.pub.Publish(context.Background(), NewEvent(msg.Event, restaurantID, data)); err != nil {
			log.WithError(err).Warn("failed to relay client event")
		}
	}
}

func (h *WSHandler) writePump(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.hub.Unsubscribe(sub)
		conn.Close()
	}()

	for {
		select {
		case evt, ok := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
