// Package effect implements the visual effects shown to a single player on
// request: the area effect, which outlines the protected area of nearby
// torches with particles, and the highlight effect, which marks nearby torches
// with decoys.
//
// Effects never block. They are driven by a Scheduler and re-enter the world
// of the viewer through Players whenever they need to show something.
package effect

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Task is a scheduled function that may be cancelled.
type Task interface {
	Cancel()
}

// Scheduler runs functions after a delay on a goroutine of the plugin.
type Scheduler interface {
	// After runs fn once after d.
	After(d time.Duration, fn func()) Task
	// Every runs fn after delay and then every interval until cancelled.
	Every(delay, interval time.Duration, fn func()) Task
}

// Target is the player an effect is shown to. *player.Player implements it.
type Target interface {
	Message(a ...any)
	ShowParticle(pos mgl64.Vec3, p world.Particle)
}

// Players runs functions with online players.
type Players interface {
	// Exec runs fn with the player with the UUID passed inside the world
	// transaction of that player. It reports false if the player is not
	// online.
	Exec(id uuid.UUID, fn func(Target)) bool
}

// safely runs fn and logs a panic raised by it together with its stack
// trace. It reports if fn returned normally.
func safely(log *slog.Logger, what string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Effect step panicked.", "step", what, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			ok = false
		}
	}()
	fn()
	return true
}
