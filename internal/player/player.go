// package player implements the ambient playback widget state machine
package player

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/services"
	"github.com/desertthunder/bloomly/internal/shared"
)

// State is the lifecycle stage of a [Player].
type State int

const (
	StateLoading State = iota
	StateError
	StateReady
	// StateEmpty is Ready with zero tracks. Nothing is rendered and transport is inert.
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Output is the audio device a player drives.
//
// Methods are called with the player locked and must not call back into it.
type Output interface {
	Play(ctx context.Context, t models.Track) error
	Pause()
}

type silentOutput struct{}

func (silentOutput) Play(context.Context, models.Track) error { return nil }
func (silentOutput) Pause()                                   {}

// Silent is an [Output] that plays nothing. Rendering reads state from [Player.Snapshot].
var Silent Output = silentOutput{}

// Snapshot is an immutable view of the player for rendering.
type Snapshot struct {
	State       State
	Tracks      []models.Track
	Index       int
	Playing     bool
	ListVisible bool
	Err         error
}

// Current returns the track under the cursor.
func (s Snapshot) Current() (models.Track, bool) {
	if s.State != StateReady || s.Index < 0 || s.Index >= len(s.Tracks) {
		return models.Track{}, false
	}
	return s.Tracks[s.Index], true
}

// Visible reports whether the widget renders anything.
func (s Snapshot) Visible() bool {
	return s.State == StateReady && len(s.Tracks) > 0
}

// Player holds the track list and playback cursor. Safe for concurrent use.
type Player struct {
	mu          sync.Mutex
	output      Output
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	state       State
	tracks      []models.Track
	index       int
	playing     bool
	listVisible bool
	err         error
	started     bool
	closed      bool
}

// New creates a player in the Loading state. Playback starts enabled.
func New(output Output, logger *log.Logger) *Player {
	if output == nil {
		output = Silent
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		output:  output,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		state:   StateLoading,
		playing: true,
	}
}

// Load fetches the track list once. Later calls return immediately.
//
// A fetch that resolves after [Player.Close] is discarded.
func (p *Player) Load(ctx context.Context, catalog services.TrackCatalog) error {
	p.mu.Lock()
	if p.started || p.closed {
		p.mu.Unlock()
		return nil
	}
	p.started = true
	p.mu.Unlock()

	tracks, err := catalog.Tracks(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.logger.Debug("discarding track list loaded after close", "catalog", catalog.Name())
		return nil
	}

	if err != nil {
		p.state = StateError
		p.err = err
		p.logger.Warn("failed to load tracks", "catalog", catalog.Name(), "error", err)
		return fmt.Errorf("failed to load tracks: %w", err)
	}

	if len(tracks) == 0 {
		p.state = StateEmpty
		return nil
	}

	p.tracks = tracks
	p.index = 0
	p.state = StateReady
	p.syncLocked()
	return nil
}

// Close unmounts the player, pausing output and discarding any pending load.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.cancel()
	if p.state == StateReady {
		p.output.Pause()
	}
}

// SelectTrack moves the cursor to i and starts playback.
func (p *Player) SelectTrack(i int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.activeLocked() {
		return nil
	}
	if i < 0 || i >= len(p.tracks) {
		return fmt.Errorf("%w: track index %d out of range [0,%d)", shared.ErrInvalidInput, i, len(p.tracks))
	}
	p.index = i
	p.playing = true
	p.syncLocked()
	return nil
}

// Next advances the cursor, wrapping to the first track, and starts playback.
func (p *Player) Next() {
	p.step(1)
}

// Prev retreats the cursor, wrapping to the last track, and starts playback.
func (p *Player) Prev() {
	p.step(-1)
}

// TrackEnded is called by the output when the current track finishes.
func (p *Player) TrackEnded() {
	p.step(1)
}

func (p *Player) step(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.activeLocked() {
		return
	}
	n := len(p.tracks)
	p.index = ((p.index+delta)%n + n) % n
	p.playing = true
	p.syncLocked()
}

// TogglePlay flips between playing and paused.
func (p *Player) TogglePlay() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.activeLocked() {
		return
	}
	p.playing = !p.playing
	p.syncLocked()
}

// ToggleList shows or hides the track list. No playback side effect.
func (p *Player) ToggleList() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.activeLocked() {
		return
	}
	p.listVisible = !p.listVisible
}

// Snapshot returns the current state.
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Snapshot{
		State:       p.state,
		Tracks:      append([]models.Track(nil), p.tracks...),
		Index:       p.index,
		Playing:     p.playing,
		ListVisible: p.listVisible,
		Err:         p.err,
	}
}

func (p *Player) activeLocked() bool {
	return !p.closed && p.state == StateReady && len(p.tracks) > 0
}

// syncLocked commands the output to match the cursor. Rejected plays are swallowed.
func (p *Player) syncLocked() {
	if !p.playing {
		p.output.Pause()
		return
	}
	track := p.tracks[p.index]
	if err := p.output.Play(p.ctx, track); err != nil {
		p.logger.Debug("play rejected by output", "track", track.ID, "error", err)
	}
}
