package resumes

import (
	"context"
	"sync"

	"github.com/yel-hadr/resume-parser/internal/shared/telemetry"
)

// Lifecycle events emitted by the service.
const (
	EventParsed   = "resume.parsed"
	EventReparsed = "resume.reparsed"
	EventDeleted  = "resume.deleted"
)

// Event carries the resume snapshot at the time of the lifecycle change.
type Event struct {
	Name   string
	Resume Resume
}

// HookFunc receives lifecycle events. Hooks must not block; they run on
// the request path.
type HookFunc func(ctx context.Context, ev Event)

// Hooks is an ordered list of observers for resume lifecycle events.
// Emission is best effort: a panicking hook is logged and skipped.
type Hooks struct {
	mu    sync.RWMutex
	funcs []HookFunc
}

// Register appends an observer.
func (h *Hooks) Register(fn HookFunc) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.funcs = append(h.funcs, fn)
}

// Emit dispatches an event to every registered hook in order.
func (h *Hooks) Emit(ctx context.Context, name string, r Resume) {
	h.mu.RLock()
	funcs := make([]HookFunc, len(h.funcs))
	copy(funcs, h.funcs)
	h.mu.RUnlock()

	ev := Event{Name: name, Resume: r}
	for _, fn := range funcs {
		emitOne(ctx, fn, ev)
	}
}

func emitOne(ctx context.Context, fn HookFunc, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Error("hook.panic", map[string]any{
				"event":     ev.Name,
				"resume_id": ev.Resume.ID,
				"panic":     rec,
			})
		}
	}()
	fn(ctx, ev)
}
