package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServe_StopsComponentsInReverseOrder(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	srv := New(handler, 0, time.Second, time.Second, time.Second, discardLogger())

	var mu sync.Mutex
	var order []string
	record := func(name string, err error) ShutdownFunc {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return err
		}
	}
	errPublisher := errors.New("drain timed out")
	srv.OnShutdown("first", record("first", nil))
	srv.OnShutdown("publisher", record("publisher", errPublisher))
	srv.OnShutdown("last", record("last", nil))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, errPublisher) {
			t.Errorf("Serve error = %v, want %v", err, errPublisher)
		}
		if err != nil && !strings.Contains(err.Error(), "publisher") {
			t.Errorf("error %q does not name the component", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"last", "publisher", "first"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("shutdown order = %v, want %v", order, want)
	}
}

func TestServe_CleanShutdown(t *testing.T) {
	srv := New(http.NotFoundHandler(), 0, time.Second, time.Second, time.Second, discardLogger())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := srv.Serve(ctx, ln); err != nil {
		t.Errorf("Serve = %v, want nil", err)
	}
}

func TestAddr(t *testing.T) {
	srv := New(http.NotFoundHandler(), 5000, time.Second, time.Second, time.Second, discardLogger())
	if srv.Addr() != ":5000" {
		t.Errorf("Addr = %q, want :5000", srv.Addr())
	}
}
