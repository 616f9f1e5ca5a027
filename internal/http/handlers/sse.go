package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-companion-backend/internal/services"
)

// sseWriter writes relay events as Server-Sent Events frames:
//
//	data: {"type":"chunk","value":"Hel"}\n\n
//
// Headers are committed lazily on the first event, so a relay that fails
// before emitting anything can still answer with a JSON error.
type sseWriter struct {
	c       *gin.Context
	started bool
}

func (w *sseWriter) start() {
	h := w.c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.c.Status(http.StatusOK)
	w.started = true
}

// send writes one frame and flushes it. It fails once the client is gone.
func (w *sseWriter) send(ev services.StreamEvent) error {
	if err := w.c.Request.Context().Err(); err != nil {
		return err
	}
	if !w.started {
		w.start()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.c.Writer, "data: %s\n\n", b); err != nil {
		return err
	}
	w.c.Writer.Flush()
	return nil
}
