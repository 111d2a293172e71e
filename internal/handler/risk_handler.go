package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/config"
	"github.com/stemsi/sei-backend/internal/response"
	"github.com/stemsi/sei-backend/internal/service"
	ws "github.com/stemsi/sei-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits every origin (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// RiskHandler triggers re-scans and streams risk changes to dashboards.
type RiskHandler struct {
	recalculation  *service.RiskRecalculationService
	studentService *service.StudentService
	queue          service.RescanEnqueuer
	rdb            *redis.Client
	upgrader       websocket.Upgrader
	log            zerolog.Logger
}

// NewRiskHandler creates a new RiskHandler. With a nil queue, re-scans run
// inline; with a nil rdb, the stream endpoint answers 503.
func NewRiskHandler(
	recalculation *service.RiskRecalculationService,
	studentService *service.StudentService,
	queue service.RescanEnqueuer,
	rdb *redis.Client,
	allowedOrigins []string,
	log zerolog.Logger,
) *RiskHandler {
	return &RiskHandler{
		recalculation:  recalculation,
		studentService: studentService,
		queue:          queue,
		rdb:            rdb,
		upgrader:       buildUpgrader(allowedOrigins),
		log:            log.With().Str("component", "risk_handler").Logger(),
	}
}

// Rescan godoc
// POST /api/v1/risk/rescan
// Queues every student for recalculation and answers 202. Without a queue
// the re-scan runs synchronously and its summary is returned with 200.
func (h *RiskHandler) Rescan(c *gin.Context) {
	ctx := c.Request.Context()

	if h.queue == nil {
		result, err := h.recalculation.RecalculateAll(ctx)
		if err != nil {
			failFromService(c, err, response.ErrNotFound)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"rescan": result})
		return
	}

	queued, err := h.recalculation.EnqueueAll(ctx, h.queue)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to queue re-scan")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrQueueUnavailable)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"queued": queued})
}

// Stream godoc
// WS /ws/v1/risk/stream?student_id=
// Forwards risk_changed events for every student, or for one student when
// student_id is given. Clients may send {"action":"ping"} to keep the
// connection alive.
func (h *RiskHandler) Stream(c *gin.Context) {
	if h.rdb == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrQueueUnavailable)
		return
	}

	studentID := c.Query("student_id")
	channel := config.CacheKey.RiskUpdatesChannel()
	if studentID != "" {
		if _, err := h.studentService.GetByID(c.Request.Context(), studentID); err != nil {
			failFromService(c, err, response.ErrStudentNotFound)
			return
		}
		channel = config.CacheKey.StudentRiskChannel(studentID)
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("channel", channel).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.rdb.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Subscribe failed")
		_ = ws.WriteError(conn, "subscription failed")
		return
	}

	if err := ws.WriteTyped(conn, ws.SubscribedResponse{Event: ws.EventSubscribed, StudentID: studentID}); err != nil {
		return
	}
	wsLog.Info().Msg("Risk stream connected")

	// The reader goroutine owns conn reads; every write happens below.
	pings := make(chan struct{}, 1)
	go func() {
		defer cancel()
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	events := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Risk stream closed")
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteRaw(conn, []byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		}
	}
}
