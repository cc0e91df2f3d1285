package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/xenking/product-catalog/internal/profile"
)

func main() {
	var (
		baseURL  string
		resource string
		userID   string
		timeout  time.Duration
	)

	flag.StringVar(&baseURL, "base-url", "", "user service base URL (or USER_API_URL env)")
	flag.StringVar(&resource, "resource", "users", "path segment of the user resource")
	flag.StringVar(&userID, "user-id", "", "id of the user to show")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	flag.Parse()

	if baseURL == "" {
		baseURL = os.Getenv("USER_API_URL")
	}
	if baseURL == "" || userID == "" {
		slog.Error("--base-url and --user-id are required")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	state, err := run(ctx, baseURL, resource, userID, timeout)
	if err != nil {
		slog.Error("user-profile failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if state != profile.StateSuccess {
		os.Exit(1)
	}
}

func run(ctx context.Context, baseURL, resource, userID string, timeout time.Duration) (profile.State, error) {
	client, err := profile.NewClient(baseURL, resource, &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return profile.StateError, errors.Wrap(err, "create client")
	}

	viewer := profile.NewViewer(client)
	defer viewer.Close()

	viewer.SetUserID(ctx, userID)
	fmt.Println(viewer.Render())

	if err := viewer.Wait(ctx); err != nil {
		return profile.StateError, errors.Wrap(err, "wait for user")
	}
	state, _ := viewer.Snapshot()
	slog.Debug("user fetched", slog.String("user_id", userID), slog.String("state", state.String()))

	fmt.Println(viewer.Render())
	return state, nil
}
