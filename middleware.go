package envelope

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/weisbartb/stack"
)

// statusThreshold splits pass-through from synthesized responses. Anything
// above it gets an envelope body, redirects included.
const statusThreshold = 299

const contentTypeJSON = "application/json"

var ErrStageRequired = errors.New("a next stage is required to attach a decorator")
var ErrNoResponse = errors.New("stage returned neither a response nor an error")

type Config struct {
	LogOutput zerolog.Logger
	DebugMode bool
}

// Middleware builds Decorators bound to a next stage. It holds no request
// state; a single instance can attach any number of stages.
type Middleware struct {
	config Config
}

func NewMiddleware(config Config) *Middleware {
	return &Middleware{config: config}
}

// Attach binds the decoration behavior to a next stage. The stage reference
// is fixed for the decorator's lifetime and shared read-only across every
// request it serves.
func (m *Middleware) Attach(next Stage) *Decorator {
	if next == nil {
		panic(ErrStageRequired)
	}
	return &Decorator{
		next:  next,
		log:   m.config.LogOutput,
		debug: m.config.DebugMode,
	}
}

// Wrap adapts Attach to the Wrapper shape for use with Chain.
func (m *Middleware) Wrap() Wrapper {
	return func(next Stage) Stage {
		return m.Attach(next)
	}
}

// Decorator wraps a next stage and normalizes every response it produces:
// the content type is forced to application/json, and any response with a
// status code above 299 has its body replaced with an ErrorMessage for that
// status. Status codes and all other headers are left as the next stage set
// them. Failures from the next stage propagate unchanged.
type Decorator struct {
	next  Stage
	log   zerolog.Logger
	debug bool
}

// Ready delegates to the next stage; the decorator adds no capacity limit
// or buffering of its own.
func (d *Decorator) Ready(ctx context.Context) error {
	return d.next.Ready(ctx)
}

// Invoke runs the next stage and decorates its response. Exactly one of two
// shapes comes back per request: the original response with its content
// type forced, or a fresh response carrying the serialized envelope.
func (d *Decorator) Invoke(ctx context.Context, req *http.Request) (*Response, error) {
	res, err := d.next.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	if res == nil {
		panic(stack.Trace(ErrNoResponse, stack.ErrorKVP{
			Key:   "url",
			Value: req.URL.String(),
		}))
	}
	if res.StatusCode > statusThreshold {
		return d.synthesize(req, res), nil
	}
	if res.Header == nil {
		res.Header = make(http.Header)
	}
	res.Header.Set("Content-Type", contentTypeJSON)
	return res, nil
}

func (d *Decorator) synthesize(req *http.Request, res *Response) *Response {
	body, err := json.Marshal(NewErrorMessage(res.StatusCode))
	if err != nil {
		// Marshal is total for ErrorMessage; anything else is a contract
		// violation, not a runtime error.
		panic(stack.Trace(err, stack.ErrorKVP{
			Key:   "statusCode",
			Value: res.StatusCode,
		}))
	}
	header := res.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set("Content-Type", contentTypeJSON)
	// The original body is discarded, so its length no longer applies.
	header.Del("Content-Length")
	if d.debug {
		d.log.Debug().
			Int("statusCode", res.StatusCode).
			Str("url", req.URL.String()).
			Msg("replaced response body with error envelope")
	}
	return &Response{
		StatusCode:  res.StatusCode,
		Header:      header,
		Body:        body,
		synthesized: true,
	}
}
