package api

import (
	"fmt"
	"net/http"

	"github.com/example/astrostream/internal/pipeline"
)

// sseSink frames pipeline events as Server-Sent Events, flushing after every
// message so chunks reach the client as they are produced.
type sseSink struct {
	w http.ResponseWriter
	f http.Flusher
}

func (s *sseSink) Send(ev pipeline.Event) error {
	b, err := pipeline.MarshalEvent(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", b); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// openStream switches the response to SSE framing. Everything written before
// this point must already be final: once the stream is open, failures are
// reported in-stream.
func openStream(w http.ResponseWriter) (*sseSink, bool) {
	f, ok := w.(http.Flusher)
	if !ok {
		errorJSON(w, http.StatusInternalServerError, errStreamingUnsupported.Error())
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	f.Flush()
	return &sseSink{w: w, f: f}, true
}
