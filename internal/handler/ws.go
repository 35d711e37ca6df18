package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"corpcab/internal/middleware"
	"corpcab/internal/realtime"
	"corpcab/internal/repository"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// FeedHandler streams owner-scoped row events over a WebSocket.
type FeedHandler struct {
	rideRepo repository.RideRepository
	broker   realtime.Broker
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(rideRepo repository.RideRepository, broker realtime.Broker) *FeedHandler {
	return &FeedHandler{rideRepo: rideRepo, broker: broker}
}

// feedFrame is one message on the feed socket.
type feedFrame struct {
	Kind  string          `json:"kind"` // snapshot, event, stats
	Rides []RideResponse  `json:"rides,omitempty"`
	Event *realtime.Event `json:"event,omitempty"`
	Stats *StatsResponse  `json:"stats,omitempty"`
}

// Serve handles GET /v1/feed/ws. The socket opens with a snapshot of the
// caller's rides, then streams ride and notification row events as they
// happen, with refreshed dashboard counters after every ride change.
func (h *FeedHandler) Serve(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()

	// The feed subscribes before fetching its snapshot, so an event landing
	// between the two is merged rather than lost.
	feed := realtime.NewRideFeed(h.rideRepo, h.broker, userID)
	rideSub, err := h.broker.Subscribe(ctx, realtime.TableRides, userID)
	if err != nil {
		log.Printf("feed: ride subscribe failed for user %s: %v", userID, err)
		return
	}
	defer rideSub.Close()

	notifSub, err := h.broker.Subscribe(ctx, realtime.TableNotifications, userID)
	if err != nil {
		log.Printf("feed: notification subscribe failed for user %s: %v", userID, err)
		return
	}
	defer notifSub.Close()

	rides, err := h.rideRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("feed: snapshot failed for user %s: %v", userID, err)
		return
	}
	for _, ride := range rides {
		feed.Apply(realtime.RideEvent(realtime.EventInsert, ride))
	}

	if err := h.write(conn, feedFrame{Kind: "snapshot", Rides: rideResponses(feed.Snapshot())}); err != nil {
		return
	}

	// Reads are discarded; the socket exists to push.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-rideSub.C:
			if !ok {
				return
			}
			feed.Apply(event)
			stats := statsResponse(feed.Stats())
			if err := h.write(conn, feedFrame{Kind: "event", Event: &event}); err != nil {
				return
			}
			if err := h.write(conn, feedFrame{Kind: "stats", Stats: &stats}); err != nil {
				return
			}

		case event, ok := <-notifSub.C:
			if !ok {
				return
			}
			if err := h.write(conn, feedFrame{Kind: "event", Event: &event}); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *FeedHandler) write(conn *websocket.Conn, frame feedFrame) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(frame)
}
