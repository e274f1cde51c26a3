package web

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/acadflow/acadflow/internal/logging"
	"github.com/acadflow/acadflow/internal/tabular"
)

// downloadSink delivers an artifact as the response body. Once started is
// set the status line is on the wire and errors can only be logged.
type downloadSink struct {
	w       http.ResponseWriter
	started bool
}

func (d *downloadSink) Deliver(_ context.Context, a tabular.Artifact) error {
	h := d.w.Header()
	h.Set("Content-Type", a.ContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
	h.Set("Content-Length", strconv.Itoa(len(a.Data)))
	d.started = true
	d.w.WriteHeader(http.StatusOK)
	if _, err := d.w.Write(a.Data); err != nil {
		return fmt.Errorf("write download: %w", err)
	}
	return nil
}

// failDownload reports err unless the download already started, in which
// case a second status would corrupt the response.
func failDownload(w http.ResponseWriter, r *http.Request, sink *downloadSink, err error) {
	if !sink.started {
		respondError(w, r, err, statusFor(err))
		return
	}
	logging.FromContext(r.Context()).Error("download interrupted",
		"path", r.URL.Path,
		"error", err.Error(),
	)
}
