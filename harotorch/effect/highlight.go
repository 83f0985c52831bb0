package effect

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/dm-vev/harotorch/harotorch/marker"
	"github.com/google/uuid"
)

// ErrUnsupported is returned by Highlight.Start if no markers can be shown to
// the viewer.
var ErrUnsupported = errors.New("markers are not supported for this player")

// HighlightConfig holds the settings of the highlight effect.
type HighlightConfig struct {
	// Duration is the time markers stay visible.
	Duration time.Duration
	// EndMessage is sent to the viewer once the markers are removed.
	EndMessage string
}

// Highlight marks torches with decoys visible to one player only. Each player
// has at most one highlight at a time: starting a new one ends the previous
// one.
type Highlight struct {
	conf      HighlightConfig
	sched     Scheduler
	players   Players
	renderers func(viewer uuid.UUID) marker.Renderer
	log       *slog.Logger

	mu     sync.Mutex
	active map[uuid.UUID]*highlightRun
}

type highlightRun struct {
	renderer marker.Renderer
	markers  []marker.Marker
	timer    Task
}

// NewHighlight returns a Highlight. renderers returns the marker renderer of a
// viewer.
func NewHighlight(conf HighlightConfig, sched Scheduler, players Players, renderers func(viewer uuid.UUID) marker.Renderer, log *slog.Logger) *Highlight {
	return &Highlight{
		conf:      conf,
		sched:     sched,
		players:   players,
		renderers: renderers,
		log:       log.With("component", "highlight"),
		active:    make(map[uuid.UUID]*highlightRun),
	}
}

// Start shows a marker at every position passed to the player with the UUID
// passed and schedules their removal. Failing to write a marker is logged and
// does not fail Start. ErrUnsupported is returned if the viewer cannot be
// shown markers at all.
func (h *Highlight) Start(viewer uuid.UUID, positions []cube.Pos) error {
	renderer := h.renderers(viewer)
	if !renderer.Supported() {
		return ErrUnsupported
	}
	h.stop(viewer, nil)

	run := &highlightRun{renderer: renderer}
	safely(h.log, "show markers", func() {
		markers, err := renderer.Show(positions)
		if err != nil {
			h.log.Warn("Could not show all torch markers.", "player", viewer, "error", err)
		}
		run.markers = markers
	})

	h.mu.Lock()
	h.active[viewer] = run
	h.mu.Unlock()

	timer := h.sched.After(h.conf.Duration, func() {
		if h.stop(viewer, run) {
			h.players.Exec(viewer, func(t Target) { t.Message(h.conf.EndMessage) })
		}
	})
	h.mu.Lock()
	if h.active[viewer] == run {
		run.timer = timer
		timer = nil
	}
	h.mu.Unlock()
	if timer != nil {
		// The highlight was stopped before its timer was stored.
		timer.Cancel()
	}
	return nil
}

// Active reports if the player with the UUID passed has a highlight running.
func (h *Highlight) Active(viewer uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.active[viewer]
	return ok
}

// Quit removes the markers of a player that left the server.
func (h *Highlight) Quit(viewer uuid.UUID) {
	h.stop(viewer, nil)
}

// Close removes the markers of every player.
func (h *Highlight) Close() {
	h.mu.Lock()
	viewers := make([]uuid.UUID, 0, len(h.active))
	for viewer := range h.active {
		viewers = append(viewers, viewer)
	}
	h.mu.Unlock()
	for _, viewer := range viewers {
		h.stop(viewer, nil)
	}
}

// stop ends the highlight of viewer and removes its markers. If run is not
// nil, the highlight is only ended if it is run. stop reports if a highlight
// was ended.
func (h *Highlight) stop(viewer uuid.UUID, run *highlightRun) bool {
	h.mu.Lock()
	current, ok := h.active[viewer]
	if !ok || (run != nil && current != run) {
		h.mu.Unlock()
		return false
	}
	delete(h.active, viewer)
	timer := current.timer
	h.mu.Unlock()

	if timer != nil {
		timer.Cancel()
	}
	safely(h.log, "hide markers", func() {
		if err := current.renderer.Hide(current.markers); err != nil {
			h.log.Debug("Could not remove torch markers.", "player", viewer, "error", err)
		}
	})
	return true
}
