package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"pennywise/internal/events"
	"pennywise/internal/logger"
	"pennywise/internal/services"
)

const (
	// heartbeatInterval keeps idle event streams alive through proxies.
	heartbeatInterval = 25 * time.Second
	// replayPageSize is how many journal rows a resuming stream loads at a time.
	replayPageSize = 500
)

// EventsHandler exposes the change feed.
type EventsHandler struct {
	changeService services.ChangeServicer
	broker        *events.Broker
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(changeService services.ChangeServicer, broker *events.Broker) *EventsHandler {
	return &EventsHandler{changeService: changeService, broker: broker}
}

// GetChanges handles replaying the change journal.
// @Summary     Replay changes
// @Description List journal entries with a sequence number greater than since, oldest first
// @Tags        events
// @Produce     json
// @Param       since query int false "Last sequence number already seen (default 0)"
// @Param       limit query int false "Maximum entries (default and max 1000)"
// @Success     200 {array}  events.Change "Changes"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /changes [get]
func (h *EventsHandler) GetChanges(c *gin.Context) {
	since, err := queryUint(c, "since")
	if err != nil {
		respondWithError(c, err)
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var seq uint
	if since != nil {
		seq = *since
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	records, err := h.changeService.ListSince(seq, n)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := make([]events.Change, 0, len(records))
	for _, r := range records {
		changes = append(changes, events.FromRecord(r))
	}
	c.JSON(http.StatusOK, gin.H{"changes": changes})
}

// Stream handles the Server-Sent Events feed.
// @Summary     Change stream
// @Description Stream committed changes as Server-Sent Events. Passing since (or Last-Event-ID) first replays newer journal entries.
// @Tags        events
// @Produce     text/event-stream
// @Param       tables query string false "Comma-separated table names to follow"
// @Param       since  query int    false "Replay changes after this sequence number"
// @Success     200 {string} string "Event stream"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     503 {object} ErrorResponse "Streaming disabled"
// @Router      /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	if h.broker == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: ErrorDetail{Code: "EVENTS_DISABLED", Message: "Change streaming is not enabled"},
		})
		return
	}

	since, err := queryUint(c, "since")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if since == nil {
		if v := c.GetHeader("Last-Event-ID"); v != "" {
			if id, parseErr := strconv.ParseUint(v, 10, 32); parseErr == nil {
				seq := uint(id)
				since = &seq
			}
		}
	}

	var tables []string
	if v := c.Query("tables"); v != "" {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables = append(tables, t)
			}
		}
	}

	// Subscribe before replaying so nothing committed in between is missed.
	sub := h.broker.Subscribe(tables...)
	defer sub.Close()

	var backlog []events.Change
	var lastSeq uint
	replaying := since != nil
	if replaying {
		lastSeq = *since
	}
	// nextPage loads the next page of the journal after lastSeq into backlog.
	nextPage := func() error {
		records, err := h.changeService.ListSince(lastSeq, replayPageSize)
		if err != nil {
			return err
		}
		if len(records) < replayPageSize {
			replaying = false
		}
		for _, r := range records {
			ch := events.FromRecord(r)
			lastSeq = ch.Seq
			if wants(tables, ch.Table) {
				backlog = append(backlog, ch)
			}
		}
		return nil
	}
	if replaying {
		if err := nextPage(); err != nil {
			respondWithError(c, err)
			return
		}
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		for len(backlog) == 0 && replaying {
			if err := nextPage(); err != nil {
				logger.Named("events").Errorw("Failed to replay changes", "error", err, "since", lastSeq)
				return false
			}
		}
		if len(backlog) > 0 {
			sendChange(c, backlog[0])
			backlog = backlog[1:]
			return true
		}
		select {
		case <-c.Request.Context().Done():
			return false
		case ch, ok := <-sub.Events():
			if !ok {
				return false
			}
			if ch.Seq <= lastSeq {
				return true
			}
			sendChange(c, ch)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}

func sendChange(c *gin.Context, ch events.Change) {
	c.Render(-1, sse.Event{
		Id:    strconv.FormatUint(uint64(ch.Seq), 10),
		Event: "change",
		Data:  ch,
	})
}

func wants(tables []string, table string) bool {
	if len(tables) == 0 {
		return true
	}
	for _, t := range tables {
		if t == table {
			return true
		}
	}
	return false
}
