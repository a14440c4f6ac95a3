package httputil

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/observability"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"waterfall"}`))
		case "/garbage":
			_, _ = w.Write([]byte(`{`))
		case "/busy":
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
		case "/boom":
			w.WriteHeader(http.StatusBadGateway)
		case "/teapot":
			w.WriteHeader(http.StatusTeapot)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		path      string
		wantCode  errors.Code
		retryable bool
	}{
		{"/ok", "", false},
		{"/garbage", errors.ErrCodeInvalidFormat, false},
		{"/missing", errors.ErrCodeNotFound, false},
		{"/busy", errors.ErrCodeRateLimited, true},
		{"/boom", errors.ErrCodeNetwork, true},
		{"/teapot", errors.ErrCodeNetwork, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var v struct{ Name string }
			err := GetJSON(context.Background(), NewClient(), srv.URL+tt.path, &v)
			if tt.wantCode == "" {
				if err != nil || v.Name != "waterfall" {
					t.Fatalf("GetJSON() = %v, name %q", err, v.Name)
				}
				return
			}
			if err == nil {
				t.Fatal("GetJSON() error = nil")
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", IsRetryable(err), tt.retryable)
			}
			if tt.wantCode == errors.ErrCodeRateLimited {
				var rl *errors.RateLimitedError
				if !stderrors.As(err, &rl) || rl.RetryAfter != 7 {
					t.Errorf("error = %v, want rate limited with RetryAfter 7", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("GetJSON() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	requests, responses, failures int
	lastStatus                    int
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string, string) { h.requests++ }
func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _, _ string, code int, _ time.Duration) {
	h.responses++
	h.lastStatus = code
}
func (h *recordingHTTPHooks) OnError(context.Context, string, string, string, error) { h.failures++ }

func TestGetJSONReportsHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	_ = GetJSON(context.Background(), NewClient(), url+"/x", new(any))
	srv.Close()
	_ = GetJSON(context.Background(), NewClient(), url+"/x", new(any))

	if hooks.requests != 2 || hooks.responses != 1 || hooks.failures != 1 {
		t.Errorf("hooks = %+v, want 2 requests, 1 response, 1 failure", *hooks)
	}
	if hooks.lastStatus != http.StatusNotFound {
		t.Errorf("lastStatus = %d, want 404", hooks.lastStatus)
	}
}
