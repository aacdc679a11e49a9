package server

import (
	"bytes"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/imgajeed76/relstamp/internal/annotate"
	"github.com/imgajeed76/relstamp/internal/util"
)

// RunHeader carries the id of the annotation pass that produced a response.
const RunHeader = "X-Relstamp-Run"

// Middleware annotates successful text/html responses to GET and HEAD
// requests. Everything else is streamed through untouched. Labels are
// computed per request, so annotated responses are marked uncacheable.
//
// Pages are always fetched whole: Range is dropped and HEAD is served from a
// full GET, so partial and header-only responses describe the annotated page.
func Middleware(a *annotate.Annotator, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			head := r.Method == http.MethodHead

			r = r.Clone(r.Context())
			r.Method = http.MethodGet
			r.Header.Del("Range")
			r.Header.Del("If-Range")

			cw := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(cw, r)
			if !cw.capturing {
				return
			}

			runID := util.NewRunID()
			h := w.Header()
			h.Del("Content-Length")
			h.Del("Last-Modified")
			h.Del("ETag")
			h.Del("Accept-Ranges")
			h.Set(RunHeader, runID)

			var out bytes.Buffer
			report, err := a.Rewrite(&cw.buf, &out)
			if err != nil {
				logger.Error("annotation failed",
					"run", runID,
					"path", r.URL.Path,
					"request_id", middleware.GetReqID(r.Context()),
					"error", err)
				http.Error(w, "annotation failed", http.StatusInternalServerError)
				return
			}

			h.Set("Content-Type", "text/html; charset=utf-8")
			h.Set("Content-Length", strconv.Itoa(out.Len()))
			h.Set("Cache-Control", "no-cache")
			w.WriteHeader(cw.status)
			if !head {
				if _, err := w.Write(out.Bytes()); err != nil {
					logger.Debug("write response", "run", runID, "error", err)
				}
			}

			logger.Info("page annotated",
				"run", runID,
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"annotated", report.Annotated(),
				"skipped", report.Skipped())
			if rerr := report.Err(); rerr != nil {
				logger.Debug("skipped elements", "run", runID, "error", rerr)
			}
		})
	}
}

// captureWriter buffers the body when the response turns out to be a
// successful HTML page and passes everything else straight through.
type captureWriter struct {
	http.ResponseWriter
	status    int
	decided   bool
	capturing bool
	buf       bytes.Buffer
}

func (c *captureWriter) decide(code int) {
	if c.decided {
		return
	}
	c.decided = true
	c.status = code
	c.capturing = code == http.StatusOK && isHTML(c.Header().Get("Content-Type"))
	if !c.capturing {
		c.ResponseWriter.WriteHeader(code)
	}
}

func (c *captureWriter) WriteHeader(code int) {
	c.decide(code)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.decide(http.StatusOK)
	if c.capturing {
		return c.buf.Write(p)
	}
	return c.ResponseWriter.Write(p)
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "text/html"
}
