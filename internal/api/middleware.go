package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/stride.report/internal/monitoring"
)

var logf = monitoring.Component("http")

const (
	ansiReset = "\033[0m"
	ansiCyan  = "\033[36m"
)

// statusColors maps a status class (2 for 2xx and so on) to its ANSI colour.
var statusColors = map[int]string{
	2: "\033[1;32m",
	3: "\033[33m",
	4: "\033[1;31m",
	5: "\033[1;31m",
}

func colorStatus(code int) string {
	c, ok := statusColors[code/100]
	if !ok {
		return strconv.Itoa(code)
	}
	return c + strconv.Itoa(code) + ansiReset
}

// responseRecorder captures the status and body size a handler produced.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.status = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	n, err := rr.ResponseWriter.Write(b)
	rr.bytes += n
	return n, err
}

func (rr *responseRecorder) Flush() {
	if f, ok := rr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LoggingMiddleware logs one line per request with status, method, URI,
// response size and latency.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		began := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logf("[%s] %s %s%s%s %dB %.2fms",
			colorStatus(rec.status), r.Method, ansiCyan, r.RequestURI, ansiReset,
			rec.bytes, float64(time.Since(began).Microseconds())/1000)
	})
}
