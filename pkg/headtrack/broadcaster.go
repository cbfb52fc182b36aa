package headtrack

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgavriloff/go-portal/internal/log"
	"github.com/dgavriloff/go-portal/pkg/capture"
	"github.com/dgavriloff/go-portal/pkg/headtrack/detection"
)

// Callback receives each newly emitted pose.
type Callback func(Pose)

// subscriber pairs a callback with an identity token so the same function
// can be registered more than once and removed individually.
type subscriber struct {
	id uint64
	fn Callback
}

// Broadcaster owns one capture source and one landmark detector and fans
// the resulting pose stream out to subscribers. Construct one per camera
// and share it by reference with every consumer.
type Broadcaster struct {
	cfg      Config
	source   capture.Source
	detector detection.Detector

	mu            sync.Mutex
	subs          []subscriber
	nextID        uint64
	last          Pose
	running       bool
	starting      bool
	stopRequested bool
	cancel        context.CancelFunc
	done          chan struct{}
}

// New creates a stopped Broadcaster. The source and detector are treated
// as black boxes; they are opened and warmed by Start.
func New(cfg Config, source capture.Source, detector detection.Detector) *Broadcaster {
	return &Broadcaster{
		cfg:      cfg.withDefaults(),
		source:   source,
		detector: detector,
		last:     DefaultPose(),
	}
}

// Subscribe registers fn and synchronously invokes it once with the last
// known pose, so a late-joining consumer renders something plausible
// immediately. The returned function removes this registration; calling it
// more than once, or after Stop, is a no-op. Duplicate registrations of
// the same function are kept and removed independently.
//
// Subscribe, Feed and the returned unsubscribe are safe to call from
// inside a callback invoked during delivery.
func (b *Broadcaster) Subscribe(fn Callback) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	last := b.last
	b.mu.Unlock()

	// Replay outside the lock so fn may subscribe or unsubscribe freely.
	b.deliver(subscriber{id: id, fn: fn}, last)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Last returns the most recently emitted pose, or the default pose if no
// face has ever been detected.
func (b *Broadcaster) Last() Pose {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Running reports whether the detection loop is active.
func (b *Broadcaster) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Feed injects a pose as if it had been produced by the detector. It is
// the entry point for relayed or synthetic pose streams and replaces the
// last known pose before delivery.
func (b *Broadcaster) Feed(p Pose) {
	b.emit(p)
}

// emit replaces the last pose, then delivers to a snapshot of the current
// subscriber list in subscription order. Mutations made during delivery
// apply only to subsequent emits.
func (b *Broadcaster) emit(p Pose) {
	b.mu.Lock()
	b.last = p
	snap := make([]subscriber, len(b.subs))
	copy(snap, b.subs)
	b.mu.Unlock()

	for _, s := range snap {
		b.deliver(s, p)
	}
}

// deliver invokes one callback, isolating panics so that one misbehaving
// consumer cannot stall the rest of the fan-out.
func (b *Broadcaster) deliver(s subscriber, p Pose) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("pose subscriber panicked", "subscriber", s.id, "error", r)
		}
	}()
	s.fn(p)
}

// Start opens the capture source, waits (bounded) for the detector to
// become ready, and begins the detection loop. The loop is tied to ctx:
// cancelling it halts detection, though Stop is still required to release
// the source and detector. Calling Start while already running is a
// no-op, including re-entrant calls made while a previous Start is still
// inside the readiness wait. A Stop arriving during that wait wins: the
// startup is abandoned, its resources are released and no loop is
// spawned. On failure every partially acquired resource is released and
// the broadcaster stays stopped.
func (b *Broadcaster) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.running || b.starting {
		b.mu.Unlock()
		return nil
	}
	b.starting = true
	b.stopRequested = false
	b.mu.Unlock()

	if err := b.source.Open(); err != nil {
		b.abortStart()
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	readyCtx, cancel := context.WithTimeout(ctx, b.cfg.ReadyTimeout)
	err := b.detector.Ready(readyCtx)
	cancel()
	if err != nil {
		// Release whatever the failed warmup left behind.
		b.releaseResources()
		b.abortStart()
		return fmt.Errorf("%w: %v", ErrDetectorUnavailable, err)
	}

	b.mu.Lock()
	if b.stopRequested {
		b.starting = false
		b.stopRequested = false
		b.mu.Unlock()
		b.releaseResources()
		log.Info("head tracking stopped")
		return nil
	}
	loopCtx, loopCancel := context.WithCancel(ctx)
	done := make(chan struct{})
	b.cancel = loopCancel
	b.done = done
	b.running = true
	b.starting = false
	b.mu.Unlock()

	go b.loop(loopCtx, done)

	log.Info("head tracking started",
		"interval", b.cfg.DetectionInterval,
		"max_faces", b.cfg.MaxFaces,
		"refine_landmarks", b.cfg.RefineLandmarks)
	return nil
}

// Stop halts the detection loop and releases the capture source and
// detector resources. A Stop during an in-flight Start is honored: the
// Start abandons its startup and releases what it acquired. Subscribers
// and the last pose are kept, so a later Start resumes delivering to the
// same set. Stopping a stopped broadcaster is a no-op.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	if b.starting {
		b.stopRequested = true
		b.mu.Unlock()
		return
	}
	if !b.running {
		b.mu.Unlock()
		return
	}
	cancel := b.cancel
	done := b.done
	b.cancel = nil
	b.done = nil
	b.running = false
	b.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	b.releaseResources()
	log.Info("head tracking stopped")
}

func (b *Broadcaster) abortStart() {
	b.mu.Lock()
	b.starting = false
	b.stopRequested = false
	b.mu.Unlock()
}

func (b *Broadcaster) releaseResources() {
	if err := b.detector.Close(); err != nil {
		log.Warn("close detector", "error", err)
	}
	if err := b.source.Close(); err != nil {
		log.Warn("close capture source", "error", err)
	}
}

func (b *Broadcaster) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.cfg.DetectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.detectOnce()
		}
	}
}

// detectOnce runs one capture+detect cycle. Frames with no face produce no
// emission at all: the last pose stands and every viewport keeps rendering
// from it.
func (b *Broadcaster) detectOnce() {
	frame, err := b.source.ReadJPEG()
	if err != nil {
		log.Debug("frame capture failed", "error", err)
		return
	}

	faces, err := b.detector.Detect(frame)
	if err != nil {
		log.Debug("landmark detection failed", "error", err)
		return
	}
	if len(faces) == 0 {
		return
	}

	pose, ok := b.poseFromLandmarks(faces[0])
	if !ok {
		return
	}
	b.emit(pose)
}
