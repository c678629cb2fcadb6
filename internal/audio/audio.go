// Package audio delivers feedback cues. Cues are fire-and-forget: they never
// block the caller and never report errors.
package audio

import (
	"io"
	"log/slog"
	"sync"
)

// Cue names a feedback sound.
type Cue string

const (
	CueClick   Cue = "click"
	CueCorrect Cue = "correct"
	CueWrong   Cue = "wrong"
)

// Cues is the audio-feedback collaborator.
type Cues interface {
	Click()
	Correct()
	Wrong()
}

// Player renders a single cue. It may block; Dispatcher calls it off the
// caller's goroutine.
type Player interface {
	Play(c Cue)
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(Cue)

func (f PlayerFunc) Play(c Cue) { f(c) }

// Noop discards every cue.
type Noop struct{}

func (Noop) Click()   {}
func (Noop) Correct() {}
func (Noop) Wrong()   {}

// Dispatcher queues cues for a background goroutine. When the queue is
// full the cue is dropped.
type Dispatcher struct {
	player Player
	queue  chan Cue
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
	logger *slog.Logger
}

// NewDispatcher starts a dispatcher with the given queue size.
func NewDispatcher(p Player, size int, logger *slog.Logger) *Dispatcher {
	if size <= 0 {
		size = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		player: p,
		queue:  make(chan Cue, size),
		done:   make(chan struct{}),
		logger: logger,
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for c := range d.queue {
		d.play(c)
	}
}

func (d *Dispatcher) play(c Cue) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("audio cue panicked", "cue", c, "panic", r)
		}
	}()
	d.player.Play(c)
}

func (d *Dispatcher) send(c Cue) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- c:
	default:
		d.logger.Debug("audio queue full, dropping cue", "cue", c)
	}
}

func (d *Dispatcher) Click()   { d.send(CueClick) }
func (d *Dispatcher) Correct() { d.send(CueCorrect) }
func (d *Dispatcher) Wrong()   { d.send(CueWrong) }

// Close stops accepting cues and waits for queued ones to play.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
	return nil
}

// Bell renders cues as terminal bells: one for a click or a correct
// answer, two for a wrong one.
type Bell struct {
	w  io.Writer
	mu sync.Mutex
}

// NewBell writes bells to w, usually os.Stdout.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) Play(c Cue) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch c {
	case CueWrong:
		io.WriteString(b.w, "\a\a")
	case CueClick, CueCorrect:
		io.WriteString(b.w, "\a")
	}
}

// Log renders cues as debug log records.
func Log(logger *slog.Logger) Player {
	return PlayerFunc(func(c Cue) {
		logger.Debug("audio cue", "cue", string(c))
	})
}

var (
	_ Cues = Noop{}
	_ Cues = (*Dispatcher)(nil)
)
