package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

type probeBody struct {
	Status string
	Checks map[string]string
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) probeBody {
	t.Helper()
	var body probeBody
	err := jx.DecodeBytes(w.Body.Bytes()).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "status":
			s, err := d.Str()
			body.Status = s
			return err
		case "checks":
			body.Checks = make(map[string]string)
			return d.Obj(func(d *jx.Decoder, name string) error {
				msg, err := d.Str()
				body.Checks[name] = msg
				return err
			})
		default:
			return d.Skip()
		}
	})
	require.NoError(t, err)
	return body
}

func runN(h *Health, p Probe, i, n int) {
	for range n {
		h.checks[p][i].run(context.Background())
	}
}

func TestLiveEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		runs       int
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{name: "healthy before first run", runs: 0, wantCode: http.StatusOK, wantStatus: "ok"},
		{name: "below failure threshold", runs: 2, wantCode: http.StatusOK, wantStatus: "ok"},
		{
			name:       "past failure threshold",
			runs:       3,
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantChecks: map[string]string{"catalog": "catalog is empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			h.AddLivenessCheck("goroutines", time.Second, passing)
			h.AddLivenessCheck("catalog", time.Second, failing("catalog is empty"))
			runN(h, Liveness, 1, tt.runs)

			w := httptest.NewRecorder()
			h.LiveEndpoint(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			body := decodeBody(t, w)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}

func TestReadyEndpoint(t *testing.T) {
	h := New()
	h.AddReadinessCheck("catalog", time.Second, passing)

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, decodeBody(t, w).Checks, "_readiness")

	h.SetReady(true)
	w = httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w).Status)

	h.SetReady(false)
	w = httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadyEndpoint_OneFailing(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passing)
	h.AddReadinessCheck("catalog", time.Second, failing("no products"))
	h.SetReady(true)
	runN(h, Readiness, 1, DefaultFailureThreshold)

	w := httptest.NewRecorder()
	h.ReadyEndpoint(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, map[string]string{"catalog": "no products"}, body.Checks)
	assert.False(t, h.IsReady())
}

func TestCheck_Recovers(t *testing.T) {
	var broken atomic.Bool
	broken.Store(true)

	h := New()
	h.Register(Readiness, Check{
		Name:             "flaky",
		Timeout:          time.Second,
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Func: func(context.Context) error {
			if broken.Load() {
				return errors.New("down")
			}
			return nil
		},
	})
	h.SetReady(true)

	runN(h, Readiness, 0, 1)
	assert.False(t, h.IsReady())

	broken.Store(false)
	runN(h, Readiness, 0, 1)
	assert.False(t, h.IsReady(), "one success is below the success threshold")
	runN(h, Readiness, 0, 1)
	assert.True(t, h.IsReady())
}

func TestCheck_Timeout(t *testing.T) {
	h := New()
	h.Register(Liveness, Check{
		Name:             "slow",
		Timeout:          10 * time.Millisecond,
		FailureThreshold: 1,
		Func: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	runN(h, Liveness, 0, 1)

	msg, failed := h.checks[Liveness][0].failure()
	assert.True(t, failed)
	assert.Contains(t, msg, "deadline exceeded")
}

func TestStartStop(t *testing.T) {
	var calls atomic.Int32
	h := New()
	h.AddLivenessCheck("counter", time.Second, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	h.Start(context.Background(), 10*time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestCheckers(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, GoroutineCountCheck(1_000_000)(ctx))
	assert.Error(t, GoroutineCountCheck(0)(ctx))
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(ctx))

	n := 0
	check := MinCountCheck("catalog", 1, func() int { return n })
	require.Error(t, check(ctx))
	n = 5
	require.NoError(t, check(ctx))
}
