package effect

import (
	"image/color"
	"log/slog"
	"sync"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/particle"
	"github.com/dm-vev/harotorch/harotorch/config"
	"github.com/dm-vev/harotorch/harotorch/geometry"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

const (
	// AreaDelay is the time before the first particles of an area effect are
	// shown.
	AreaDelay = 3 * time.Second
	// AreaInterval is the time between two rounds of particles.
	AreaInterval = 500 * time.Millisecond
	// AreaDuration is the time after which an area effect ends.
	AreaDuration = 30 * time.Second
	// ClusterCount is the number of particles shown above a torch every round.
	ClusterCount = 10
)

// TorchArea is the outline of the protected area of one torch.
type TorchArea struct {
	Torch  cube.Pos
	Colour color.RGBA
	// Points holds the outline. Points may repeat.
	Points []cube.Pos
}

// Areas computes the outline of every torch passed. Circles take the Y
// coordinate of their points from height, which is passed the position of the
// torch. Squares lie at the height of the torch.
func Areas(torches []cube.Pos, shape config.Shape, rng int, height func(torch cube.Pos) geometry.HeightFunc) []TorchArea {
	areas := make([]TorchArea, 0, len(torches))
	for _, torch := range torches {
		area := TorchArea{Torch: torch, Colour: geometry.RandomColour()}
		if shape == config.Circle {
			area.Points = geometry.Circle(torch, rng, height(torch))
		} else {
			area.Points = geometry.Square(torch, rng)
		}
		areas = append(areas, area)
	}
	return areas
}

// SurfaceHeight returns a function computing the height of circle points from
// the terrain in tx: one block above the highest block of the column. In
// dimensions without a sky, the height of the torch is used instead.
func SurfaceHeight(tx *world.Tx) func(torch cube.Pos) geometry.HeightFunc {
	nether := tx.World().Dimension() == world.Nether
	return func(torch cube.Pos) geometry.HeightFunc {
		if nether {
			return geometry.FixedHeight(torch[1])
		}
		return func(x, z int) int { return tx.HighestBlock(x, z) + 1 }
	}
}

// AreaConfig holds the settings of the area effect.
type AreaConfig struct {
	// Rows is the number of particles stacked on every point of an outline.
	Rows int
	// EndMessage is sent to the viewer once the effect ends.
	EndMessage string
}

// Area shows the protected area of torches to players.
type Area struct {
	conf    AreaConfig
	sched   Scheduler
	players Players
	log     *slog.Logger
}

// NewArea returns an Area using sched for timing and players to reach
// viewers.
func NewArea(conf AreaConfig, sched Scheduler, players Players, log *slog.Logger) *Area {
	return &Area{conf: conf, sched: sched, players: players, log: log.With("component", "area")}
}

// AreaRun is a running area effect.
type AreaRun struct {
	mu      sync.Mutex
	ticker  Task
	timer   Task
	stopped bool
}

// Cancel ends the effect without notifying the viewer. It may be called more
// than once.
func (r *AreaRun) Cancel() {
	r.mu.Lock()
	r.stopped = true
	ticker, timer := r.ticker, r.timer
	r.mu.Unlock()
	if ticker != nil {
		ticker.Cancel()
	}
	if timer != nil {
		timer.Cancel()
	}
}

// Stopped reports if the effect has ended.
func (r *AreaRun) Stopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

// Start starts showing areas to the player with the UUID passed. nether
// reports if the torches are in a dimension without a sky, in which case
// particles are stacked downwards too.
func (a *Area) Start(viewer uuid.UUID, areas []TorchArea, nether bool) *AreaRun {
	rounds := make([][]mgl64.Vec3, len(areas))
	for i, area := range areas {
		rounds[i] = a.particlePositions(area, nether)
	}
	run := &AreaRun{}
	ticker := a.sched.Every(AreaDelay, AreaInterval, func() {
		if run.Stopped() {
			return
		}
		online := a.players.Exec(viewer, func(t Target) {
			// Runs on the goroutine of the world, which must survive a panic.
			safely(a.log, "area particles", func() {
				for i, area := range areas {
					show(t, rounds[i], area.Colour)
				}
			})
		})
		if !online {
			run.Cancel()
		}
	})
	timer := a.sched.After(AreaDuration, func() {
		ticker.Cancel()
		if run.Stopped() {
			return
		}
		run.Cancel()
		a.players.Exec(viewer, func(t Target) { t.Message(a.conf.EndMessage) })
	})

	run.mu.Lock()
	run.ticker, run.timer = ticker, timer
	stopped := run.stopped
	run.mu.Unlock()
	if stopped {
		ticker.Cancel()
		timer.Cancel()
	}
	return run
}

// particlePositions returns the positions of all particles shown for area in
// one round.
func (a *Area) particlePositions(area TorchArea, nether bool) []mgl64.Vec3 {
	points := geometry.Columns(area.Points)
	positions := make([]mgl64.Vec3, 0, ClusterCount+len(points)*a.conf.Rows*2)
	above := area.Torch.Vec3().Add(mgl64.Vec3{0.5, 1.5, 0.5})
	for range ClusterCount {
		positions = append(positions, above)
	}
	for _, p := range points {
		base := p.Vec3Centre()
		for i := 0; i < a.conf.Rows; i++ {
			positions = append(positions, base.Add(mgl64.Vec3{0, float64(i)}))
		}
		if nether {
			for i := 1; i < a.conf.Rows-1; i++ {
				positions = append(positions, base.Sub(mgl64.Vec3{0, float64(i)}))
			}
		}
	}
	return positions
}

func show(t Target, positions []mgl64.Vec3, c color.RGBA) {
	dust := particle.Dust{Colour: c}
	for _, pos := range positions {
		t.ShowParticle(pos, dust)
	}
}
