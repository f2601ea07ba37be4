package envelope_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/weisbartb/tsbuffer"

	"github.com/norvind/envelope"
)

// tagWrapper appends a marker header on the way back up so chain ordering
// is observable.
func tagWrapper(value string) envelope.Wrapper {
	return func(next envelope.Stage) envelope.Stage {
		return envelope.StageFunc(func(ctx context.Context, req *http.Request) (*envelope.Response, error) {
			res, err := next.Invoke(ctx, req)
			if err != nil {
				return nil, err
			}
			res.Header.Add("X-Trace", value)
			return res, nil
		})
	}
}

func TestChain_Order(t *testing.T) {
	buf := tsbuffer.New()
	middleware := envelope.NewMiddleware(envelope.Config{LogOutput: zerolog.New(buf)})
	terminal := &stubStage{res: envelope.NewResponse(http.StatusOK)}

	chained := envelope.Chain(tagWrapper("outer"), tagWrapper("inner"), middleware.Wrap())(terminal)
	out, err := chained.Invoke(context.Background(), httptest.NewRequest(http.MethodGet, "/chained", nil))
	require.NoError(t, err)
	require.Equal(t, []string{"inner", "outer"}, out.Header.Values("X-Trace"))
	require.Equal(t, "application/json", out.Header.Get("Content-Type"))
}

func TestChain_DoubleDecoration(t *testing.T) {
	buf := tsbuffer.New()
	middleware := envelope.NewMiddleware(envelope.Config{LogOutput: zerolog.New(buf)})
	terminal := &stubStage{res: envelope.NewResponse(http.StatusNotFound)}

	chained := envelope.Chain(middleware.Wrap(), middleware.Wrap())(terminal)
	out, err := chained.Invoke(context.Background(), httptest.NewRequest(http.MethodGet, "/stacked", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, out.StatusCode)
	require.Equal(t, []string{"application/json"}, out.Header.Values("Content-Type"))
	require.JSONEq(t, `{"error":404,"message":"Not Found"}`, string(out.Body))
}

func TestStageFunc_AlwaysReady(t *testing.T) {
	stage := envelope.StageFunc(func(ctx context.Context, req *http.Request) (*envelope.Response, error) {
		return envelope.NewResponse(http.StatusNoContent), nil
	})
	require.NoError(t, stage.Ready(context.Background()))
	res, err := stage.Invoke(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, res.StatusCode)
}
