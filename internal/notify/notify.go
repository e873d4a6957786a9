// Copyright (c) 2026 RootLink. All rights reserved.

/*
Package notify carries user-visible notices from the request pipeline to the
view layer.

The pipeline raises a notice for every failed call; the next rendered view
drains them. Notices are also written to the structured log so that a
headless console still leaves a trace.
*/
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/RuzhenWong/rootlink/internal/platform/ctxutil"
)

// Level is the severity of a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one user-visible message.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier receives user-visible notices.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// Error raises an error notice on n.
func Error(ctx context.Context, n Notifier, message string) {
	n.Notify(ctx, Notice{Level: LevelError, Message: message})
}

// Success raises a success notice on n.
func Success(ctx context.Context, n Notifier, message string) {
	n.Notify(ctx, Notice{Level: LevelSuccess, Message: message})
}

// # Flash Queue

// DefaultFlashCapacity bounds the notices kept between two rendered views.
const DefaultFlashCapacity = 32

// Flash queues notices until a view drains them. When full, the oldest
// notice is dropped.
type Flash struct {
	mu       sync.Mutex
	notices  []Notice
	capacity int
}

// NewFlash creates a queue holding at most capacity notices.
func NewFlash(capacity int) *Flash {
	if capacity <= 0 {
		capacity = DefaultFlashCapacity
	}
	return &Flash{capacity: capacity}
}

// Notify implements [Notifier].
func (flash *Flash) Notify(_ context.Context, notice Notice) {
	flash.mu.Lock()
	defer flash.mu.Unlock()

	if len(flash.notices) == flash.capacity {
		flash.notices = flash.notices[1:]
	}
	flash.notices = append(flash.notices, notice)
}

// Drain returns the queued notices in arrival order and empties the queue.
func (flash *Flash) Drain() []Notice {
	flash.mu.Lock()
	defer flash.mu.Unlock()

	drained := flash.notices
	flash.notices = nil
	return drained
}

// # Log Sink

// LogNotifier writes notices to the context logger, falling back to its own.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a [LogNotifier].
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements [Notifier].
func (sink *LogNotifier) Notify(ctx context.Context, notice Notice) {
	logger := sink.logger
	if fromCtx := ctxutil.GetLogger(ctx); fromCtx != slog.Default() {
		logger = fromCtx
	}

	level := slog.LevelInfo
	if notice.Level == LevelError {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "user_notice", slog.String("level", string(notice.Level)), slog.String("message", notice.Message))
}

// # Fan-out

// Multi delivers every notice to each notifier in order.
type Multi []Notifier

// Notify implements [Notifier].
func (multi Multi) Notify(ctx context.Context, notice Notice) {
	for _, notifier := range multi {
		notifier.Notify(ctx, notice)
	}
}
