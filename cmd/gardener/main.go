// Command gardener runs the autonomous steward for a curious-world server.
// It observes world state over the API, decides on interventions from fixed
// rules, and acts via the admin intervention endpoint.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/curious-world/internal/gardener"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	apiURL := envOrDefault("WORLDSIM_API_URL", "http://localhost:8080")
	adminKey := os.Getenv("WORLDSIM_ADMIN_KEY")
	memoryPath := envOrDefault("GARDENER_MEMORY", "gardener_memory.json")
	intervalSec := envIntOrDefault("GARDENER_INTERVAL", 60)

	if adminKey == "" {
		slog.Error("WORLDSIM_ADMIN_KEY is required")
		os.Exit(1)
	}

	interval := time.Duration(intervalSec) * time.Second
	slog.Info("gardener starting", "api_url", apiURL, "interval", interval)

	observer := gardener.NewObserver(apiURL)
	actor := gardener.NewActor(apiURL, adminKey)
	mem := gardener.LoadMemory(memoryPath)

	slog.Info("waiting for worldsim API...")
	waitForAPI(apiURL)

	runCycle(observer, actor, mem)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runCycle(observer, actor, mem)
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			fmt.Println("Gardener stopped.")
			return
		}
	}
}

func runCycle(o *gardener.Observer, a *gardener.Actor, mem *gardener.CycleMemory) {
	if _, err := gardener.Cycle(o, a, mem); err != nil {
		slog.Error("gardener cycle failed", "error", err)
	}
}

// waitForAPI polls the status endpoint until it answers, up to two minutes.
func waitForAPI(baseURL string) {
	client := &http.Client{Timeout: 5 * time.Second}
	deadline := time.Now().Add(2 * time.Minute)
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("worldsim API is ready")
				return
			}
		}
		time.Sleep(5 * time.Second)
	}
	slog.Warn("worldsim API not ready after 2 minutes, continuing anyway")
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}
