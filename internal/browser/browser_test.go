package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResponse_CheckStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    *Response
		wantErr bool
	}{
		{"200 is ok", &Response{URL: "https://example.com", Status: 200}, false},
		{"301 is ok", &Response{URL: "https://example.com", Status: 301}, false},
		{"404 fails", &Response{URL: "https://example.com/about", Status: 404}, true},
		{"503 fails", &Response{URL: "https://example.com", Status: 503}, true},
		{"missing status fails", &Response{URL: "https://example.com"}, true},
		{"nil response fails", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.resp.CheckStatus()
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNavigation) {
				t.Errorf("expected error to match ErrNavigation, got %v", err)
			}
		})
	}
}

func TestStatusError(t *testing.T) {
	t.Parallel()

	err := error(&StatusError{URL: "https://example.com", Status: 502})
	var se *StatusError
	if !errors.As(err, &se) || se.Status != 502 {
		t.Fatalf("errors.As failed for %v", err)
	}
	if want := "navigation failed: https://example.com returned status 502"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewChromeLauncher(t *testing.T) {
	t.Parallel()

	t.Run("defaults to headless", func(t *testing.T) {
		t.Parallel()
		l := NewChromeLauncher()
		if !l.headless {
			t.Error("expected headless by default")
		}
		if l.logf == nil {
			t.Error("expected a default log sink")
		}
	})

	t.Run("options are applied", func(t *testing.T) {
		t.Parallel()
		l := NewChromeLauncher(
			WithHeadless(false),
			WithUserAgent("domainscan-test"),
			WithExecPath("/usr/bin/chromium"),
			WithLogf(nil),
		)
		if l.headless {
			t.Error("expected headless to be false")
		}
		if l.userAgent != "domainscan-test" || l.execPath != "/usr/bin/chromium" {
			t.Errorf("unexpected launcher %+v", l)
		}
		if l.logf == nil {
			t.Error("WithLogf(nil) must keep the default sink")
		}

		base := len(NewChromeLauncher().allocatorOptions())
		if got := len(l.allocatorOptions()); got != base+2 {
			t.Errorf("allocatorOptions() has %d entries, want %d", got, base+2)
		}
	})
}

func TestChromeLauncher_LaunchCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewChromeLauncher().Launch(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestChromePage_Bind(t *testing.T) {
	t.Parallel()

	t.Run("caller deadline is applied", func(t *testing.T) {
		t.Parallel()
		p := &chromePage{ctx: context.Background(), cancel: func() {}}

		deadline := time.Now().Add(time.Minute)
		ctx, cancel := context.WithDeadline(context.Background(), deadline)
		defer cancel()

		runCtx, release := p.bind(ctx)
		defer release()
		got, ok := runCtx.Deadline()
		if !ok || !got.Equal(deadline) {
			t.Errorf("Deadline() = %v, %v; want %v", got, ok, deadline)
		}
	})

	t.Run("caller cancellation propagates without closing the tab", func(t *testing.T) {
		t.Parallel()
		tab, closeTab := context.WithCancel(context.Background())
		defer closeTab()
		p := &chromePage{ctx: tab, cancel: closeTab}

		ctx, cancel := context.WithCancel(context.Background())
		runCtx, release := p.bind(ctx)
		defer release()

		cancel()
		select {
		case <-runCtx.Done():
		case <-time.After(time.Second):
			t.Fatal("run context was not cancelled")
		}
		if tab.Err() != nil {
			t.Error("tab context must stay alive")
		}
	})
}

func TestChromeSession_ClosedSession(t *testing.T) {
	t.Parallel()

	s := &chromeSession{ctx: context.Background(), cancel: func() {}}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := s.NewPage(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
}
