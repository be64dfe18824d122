package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rvaldezm/docscope/internal/bootstrap"
	"github.com/rvaldezm/docscope/internal/config"
	"github.com/rvaldezm/docscope/internal/core/domain"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", app.Metrics.Handler())
		addr := ":" + cfg.WorkerMetricsPort
		log.Printf("worker metrics listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeIngestionStatus(ctx, func(handlerCtx context.Context, status domain.IngestionStatus) error {
		app.Metrics.IncStatusEvent("consumed")
		if status.SessionID == "" {
			return nil
		}

		msgCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()
		return app.Sessions.AppendMessage(msgCtx, status.SessionID, domain.Message{
			Sender:    domain.SenderSystem,
			Text:      formatStatus(status),
			IsError:   status.Succeeded == 0 && status.Failed > 0,
			Timestamp: status.FinishedAt,
		})
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

func formatStatus(status domain.IngestionStatus) string {
	total := status.Succeeded + status.Failed
	var b strings.Builder
	fmt.Fprintf(&b, "Processed %d of %d uploaded files into scope %s.", status.Succeeded, total, status.Scope)
	for _, outcome := range status.Outcomes {
		if outcome.Status == domain.FileIngested {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", outcome.OriginalName, outcome.Status)
		if outcome.Reason != "" {
			fmt.Fprintf(&b, " (%s)", outcome.Reason)
		}
	}
	return b.String()
}
