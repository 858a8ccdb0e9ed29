package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// keepAliveInterval spaces comment lines that keep idle streams open
// through proxies.
const keepAliveInterval = 25 * time.Second

// handleEvents streams session change notifications via Server-Sent Events.
// Each event carries the event kind ("busy" or "render") and a JSON body with
// the busy flag and the generation. The listener is removed when the client
// goes away or the session is dropped.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := sessionFor(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// Tell the client where things stand so a reconnect catches up.
	view := sess.Snapshot()
	fmt.Fprintf(w, "event: hello\ndata: {\"busy\":%t,\"generation\":%d}\n\n", view.Busy, view.Generation)
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, _ := json.Marshal(ev)
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.Generation, ev.Kind, data)
			flusher.Flush()

		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
