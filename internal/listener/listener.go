// Package listener provides a Postgres LISTEN/NOTIFY consumer that reloads the
// dataset when its table changes. It holds a dedicated pgx connection (not
// from a pool) listening on the configured channel.
//
// A trigger on the players table fires pg_notify with a JSON payload naming
// the table, and this consumer refreshes the dataset store in place.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/fifa-analytics/internal/maintenance"
	"github.com/albapepper/fifa-analytics/internal/source"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// ChangeEvent is the JSON payload from pg_notify(channel, ...). An empty
// payload means "something changed" and always triggers a reload.
type ChangeEvent struct {
	Table     string `json:"table"`
	Operation string `json:"op"`
	Timestamp int64  `json:"ts"`
}

// Config names the dataset source and the notification channel.
type Config struct {
	Source  string // postgres:// source with ?table=
	Channel string
	Timeout time.Duration // Bound on one reload
}

// Start opens a dedicated connection and listens on cfg.Channel. It reconnects
// automatically on connection loss. Blocks until ctx is cancelled. Intended to
// be called with `go`.
func Start(ctx context.Context, store maintenance.Refresher, cfg Config, logger *slog.Logger) {
	connURL, table, err := source.SplitTableURL(cfg.Source)
	if err != nil {
		logger.Error("Dataset listener disabled", "error", err)
		return
	}
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, connURL, table, store, cfg, logger)
		if ctx.Err() != nil {
			logger.Info("Dataset listener stopped (context cancelled)")
			return
		}

		logger.Error("Dataset listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, connURL, table string, store maintenance.Refresher, cfg Config, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, connURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+pgx.Identifier{cfg.Channel}.Sanitize())
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", cfg.Channel, err)
	}
	logger.Info("Dataset listener connected", "channel", cfg.Channel, "table", table)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		event, err := parseEvent(notification.Payload)
		if err != nil {
			logger.Warn("Failed to parse dataset change event",
				"payload", notification.Payload, "error", err)
			continue
		}
		if !event.matches(table) {
			continue
		}

		logger.Info("Dataset change received",
			"table", table,
			"op", event.Operation)

		// Reload asynchronously to avoid blocking the listener. Concurrent
		// reloads of the same source collapse into one.
		go reload(ctx, store, cfg, logger)
	}
}

func parseEvent(payload string) (ChangeEvent, error) {
	var event ChangeEvent
	if strings.TrimSpace(payload) == "" {
		return event, nil
	}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return ChangeEvent{}, err
	}
	return event, nil
}

// matches reports whether the event concerns table. Events without a table
// match every table.
func (e ChangeEvent) matches(table string) bool {
	if e.Table == "" {
		return true
	}
	// Triggers report schema-qualified names.
	name := e.Table
	if i := strings.LastIndexByte(name, '.'); i >= 0 && !strings.Contains(table, ".") {
		name = name[i+1:]
	}
	return strings.EqualFold(name, table)
}

func reload(ctx context.Context, store maintenance.Refresher, cfg Config, logger *slog.Logger) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	snap, err := store.Refresh(ctx, cfg.Source)
	if err != nil {
		logger.Warn("Dataset reload after change failed, keeping previous dataset", "error", err)
		return
	}
	logger.Info("Dataset reloaded after change", "load_id", snap.ID, "rows", snap.Dataset.Len())
}
