package envelope

import (
	"bytes"
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/weisbartb/stack"
)

// HandlerStage adapts an http.Handler into a Stage. The handler's output is
// recorded in memory rather than written to the wire, so mux-generated
// responses (like the built-in 404 page) are decorated the same way handler
// responses are. Handlers cannot fail, so Invoke never returns an error and
// the stage is always ready.
func HandlerStage(handler http.Handler) Stage {
	return handlerStage{handler: handler}
}

type handlerStage struct {
	handler http.Handler
}

func (h handlerStage) Invoke(ctx context.Context, req *http.Request) (*Response, error) {
	recorder := newRecordingWriter()
	h.handler.ServeHTTP(recorder, req.WithContext(ctx))
	return recorder.response(), nil
}

func (h handlerStage) Ready(ctx context.Context) error {
	return nil
}

// Handler mounts the decorator on a standard net/http chain.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return m.HandlerFor(HandlerStage(next))
}

// HandlerFor mounts an already-built stage (which may itself be a chain of
// decorators) behind the decorator and serves its decorated responses.
// Every response is stamped with an X-Request-ID. http.Handler has no error
// return, so a failing stage aborts the request with a traced panic and the
// server runtime takes it from there.
func (m *Middleware) HandlerFor(stage Stage) http.Handler {
	decorator := m.Attach(stage)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := decorator.Invoke(r.Context(), r)
		if err != nil {
			panic(stack.Trace(err, stack.ErrorKVP{
				Key:   "url",
				Value: r.URL.String(),
			}))
		}
		header := w.Header()
		for key, values := range res.Header {
			header[key] = values
		}
		header.Set("X-Request-ID", uuid.New().String())
		w.WriteHeader(res.StatusCode)
		if len(res.Body) > 0 {
			_, _ = w.Write(res.Body)
		}
	})
}

// recordingWriter buffers a handler's output so it can be decorated before
// anything reaches the wire.
type recordingWriter struct {
	header      http.Header
	body        bytes.Buffer
	statusCode  int
	wroteHeader bool
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

func (rw *recordingWriter) Header() http.Header {
	return rw.header
}

// WriteHeader records the status code; only the first call takes effect.
func (rw *recordingWriter) WriteHeader(statusCode int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = statusCode
	rw.wroteHeader = true
}

// Write buffers the body, with an implicit 200 if WriteHeader was not
// called first.
func (rw *recordingWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.wroteHeader = true
	}
	return rw.body.Write(b)
}

func (rw *recordingWriter) response() *Response {
	return &Response{
		StatusCode: rw.statusCode,
		Header:     rw.header,
		Body:       rw.body.Bytes(),
	}
}
