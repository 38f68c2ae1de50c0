package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotpin/internal/shared"
	"golang.org/x/oauth2"
)

type fakeExchanger struct {
	token *oauth2.Token
	err   error
	calls int
}

func (f *fakeExchanger) Token(ctx context.Context, state string, r *http.Request, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestOAuthHandler(t *testing.T) {
	t.Run("successful callback", func(t *testing.T) {
		ex := &fakeExchanger{token: &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}}
		h := NewOAuthHandler(ex, "state123")
		router := NewRouter(quietLogger(), h)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state123&code=abc", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token.RefreshToken != "refresh" {
			t.Errorf("expected refresh token, got %q", result.Token.RefreshToken)
		}
	})

	tests := []struct {
		name       string
		query      string
		exchangeEr error
		wantStatus int
		wantCalls  int
		wantErr    string
	}{
		{name: "state mismatch", query: "state=wrong&code=abc", wantStatus: http.StatusBadRequest, wantErr: "invalid state"},
		{name: "denied", query: "state=s&error=access_denied", wantStatus: http.StatusBadRequest, wantErr: "access_denied"},
		{name: "exchange failure", query: "state=s&code=abc", exchangeEr: errors.New("bad code"), wantStatus: http.StatusInternalServerError, wantCalls: 1, wantErr: "bad code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &fakeExchanger{err: tt.exchangeEr}
			h := NewOAuthHandler(ex, "s")

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if ex.calls != tt.wantCalls {
				t.Errorf("expected %d exchange calls, got %d", tt.wantCalls, ex.calls)
			}
			result := <-h.Result()
			if result.Error() == nil || !strings.Contains(result.Error().Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, result.Error())
			}
		})
	}

	t.Run("second callback rejected", func(t *testing.T) {
		ex := &fakeExchanger{token: &oauth2.Token{AccessToken: "a"}}
		h := NewOAuthHandler(ex, "s")

		for i, want := range []int{http.StatusOK, http.StatusBadRequest} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=abc", nil))
			if rec.Code != want {
				t.Errorf("call %d: expected status %d, got %d", i+1, want, rec.Code)
			}
		}
		if ex.calls != 1 {
			t.Errorf("expected 1 exchange, got %d", ex.calls)
		}
	})
}

func TestNewRouter(t *testing.T) {
	h := NewOAuthHandler(&fakeExchanger{}, "s")
	router := NewRouter(quietLogger(), h)

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/callback", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestCallbackServer(t *testing.T) {
	t.Run("returns token from callback", func(t *testing.T) {
		ex := &fakeExchanger{token: &oauth2.Token{AccessToken: "a", RefreshToken: "r"}}
		srv, err := Listen("127.0.0.1:0", NewOAuthHandler(ex, "s"), quietLogger())
		if err != nil {
			t.Fatalf("Listen failed: %v", err)
		}

		go func() {
			resp, err := http.Get(fmt.Sprintf("http://%s/callback?state=s&code=abc", srv.Addr()))
			if err == nil {
				resp.Body.Close()
			}
		}()

		token, err := srv.Wait(context.Background(), 5*time.Second)
		if err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
		if token.RefreshToken != "r" {
			t.Errorf("expected refresh token r, got %q", token.RefreshToken)
		}
	})

	t.Run("callback error wraps ErrAuth", func(t *testing.T) {
		srv, err := Listen("127.0.0.1:0", NewOAuthHandler(&fakeExchanger{}, "s"), quietLogger())
		if err != nil {
			t.Fatalf("Listen failed: %v", err)
		}

		go func() {
			resp, err := http.Get(fmt.Sprintf("http://%s/callback?state=nope&code=abc", srv.Addr()))
			if err == nil {
				resp.Body.Close()
			}
		}()

		_, err = srv.Wait(context.Background(), 5*time.Second)
		if !errors.Is(err, shared.ErrAuth) {
			t.Errorf("expected ErrAuth, got %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		srv, err := Listen("127.0.0.1:0", NewOAuthHandler(&fakeExchanger{}, "s"), quietLogger())
		if err != nil {
			t.Fatalf("Listen failed: %v", err)
		}

		_, err = srv.Wait(context.Background(), 10*time.Millisecond)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		srv, err := Listen("127.0.0.1:0", NewOAuthHandler(&fakeExchanger{}, "s"), quietLogger())
		if err != nil {
			t.Fatalf("Listen failed: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = srv.Wait(ctx, time.Minute)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
