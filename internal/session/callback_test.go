package session

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestCallback_DeliversSessionToken(t *testing.T) {
	cb, err := ListenCallback(0)
	if err != nil {
		t.Fatalf("ListenCallback returned error: %v", err)
	}
	if !strings.HasPrefix(cb.URL(), "http://127.0.0.1:") || !strings.HasSuffix(cb.URL(), "/callback") {
		t.Fatalf("URL = %q", cb.URL())
	}

	go func() {
		resp, err := http.Get(cb.URL() + "?session=s%3Aabc")
		if err == nil {
			_ = resp.Body.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	token, err := cb.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if token != "s:abc" {
		t.Fatalf("token = %q, want s:abc", token)
	}
}

func TestCallback_ReportsMissingSession(t *testing.T) {
	cb, err := ListenCallback(0)
	if err != nil {
		t.Fatalf("ListenCallback returned error: %v", err)
	}

	var status int
	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err := http.Get(cb.URL() + "?error=access_denied")
		if err == nil {
			status = resp.StatusCode
			_ = resp.Body.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cb.Wait(ctx); err == nil || !strings.Contains(err.Error(), "access_denied") {
		t.Fatalf("Wait error = %v, want access_denied", err)
	}
	<-done
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestCallback_WaitHonoursContext(t *testing.T) {
	cb, err := ListenCallback(0)
	if err != nil {
		t.Fatalf("ListenCallback returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := cb.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait error = %v, want deadline exceeded", err)
	}
}

func TestCallback_IgnoresRequestsWithoutResult(t *testing.T) {
	cb, err := ListenCallback(0)
	if err != nil {
		t.Fatalf("ListenCallback returned error: %v", err)
	}

	resp, err := http.Get(cb.URL())
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	go func() {
		resp, err := http.Get(cb.URL() + "?session=real")
		if err == nil {
			_ = resp.Body.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	token, err := cb.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if token != "real" {
		t.Fatalf("token = %q, want real", token)
	}
}

func TestCallback_CloseReleasesPort(t *testing.T) {
	cb, err := ListenCallback(0)
	if err != nil {
		t.Fatalf("ListenCallback returned error: %v", err)
	}
	port := cb.ln.Addr().(*net.TCPAddr).Port
	if err := cb.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := cb.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}

	again, err := ListenCallback(port)
	if err != nil {
		t.Fatalf("relisten on %d: %v", port, err)
	}
	_ = again.Close()
}
