package headtrack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgavriloff/go-portal/pkg/capture"
	"github.com/dgavriloff/go-portal/pkg/headtrack/detection"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DetectionInterval = time.Millisecond
	cfg.ReadyTimeout = time.Second
	return cfg
}

func TestSubscribeReplaysLastPose(t *testing.T) {
	b := New(testConfig(), nil, nil)

	var got []Pose
	b.Subscribe(func(p Pose) { got = append(got, p) })

	if len(got) != 1 {
		t.Fatalf("replay count = %d, want 1", len(got))
	}
	if got[0] != DefaultPose() {
		t.Errorf("replayed pose = %+v, want default %+v", got[0], DefaultPose())
	}

	b.Feed(Pose{X: 0.3, Y: -0.2, Z: 42})

	var late Pose
	b.Subscribe(func(p Pose) { late = p })
	if (late != Pose{X: 0.3, Y: -0.2, Z: 42}) {
		t.Errorf("late subscriber replayed %+v, want fed pose", late)
	}
}

func TestFeedDeliversInSubscriptionOrder(t *testing.T) {
	b := New(testConfig(), nil, nil)

	var order []int
	b.Subscribe(func(Pose) { order = append(order, 1) })
	b.Subscribe(func(Pose) { order = append(order, 2) })
	order = nil

	b.Feed(Pose{Z: 20})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("delivery order = %v, want [1 2]", order)
	}
	if b.Last() != (Pose{Z: 20}) {
		t.Errorf("Last() = %+v, want fed pose", b.Last())
	}
}

func TestUnsubscribeIsIdempotentAndIndependent(t *testing.T) {
	b := New(testConfig(), nil, nil)

	var first, second int
	unsubA := b.Subscribe(func(Pose) { first++ })
	unsubB := b.Subscribe(func(Pose) { first++ })
	b.Subscribe(func(Pose) { second++ })
	first, second = 0, 0

	unsubA()
	unsubA() // second call is a no-op
	b.Feed(Pose{Z: 15})

	if first != 1 {
		t.Errorf("remaining duplicate received %d deliveries, want 1", first)
	}
	if second != 1 {
		t.Errorf("independent subscriber received %d deliveries, want 1", second)
	}

	unsubB()
	b.Feed(Pose{Z: 16})
	if first != 1 {
		t.Errorf("unsubscribed callback still delivered, count %d", first)
	}
}

func TestEmitUsesSnapshotOfSubscribers(t *testing.T) {
	b := New(testConfig(), nil, nil)

	var addedDuring int
	b.Subscribe(func(Pose) {})
	first := true
	b.Subscribe(func(Pose) {
		if first {
			first = false
			return
		}
		// Subscribing mid-delivery must not make the new callback see
		// the in-flight pose.
		b.Subscribe(func(Pose) { addedDuring++ })
	})

	addedDuring = 0
	b.Feed(Pose{Z: 30})
	if addedDuring != 1 {
		// The new subscriber sees only its synchronous replay.
		t.Errorf("mid-emit subscriber deliveries = %d, want 1 (replay only)", addedDuring)
	}

	b.Feed(Pose{Z: 31})
	if addedDuring < 2 {
		t.Errorf("mid-emit subscriber missed the following emit, count %d", addedDuring)
	}
}

func TestPanickingSubscriberDoesNotStopFanout(t *testing.T) {
	b := New(testConfig(), nil, nil)

	var after int
	b.Subscribe(func(Pose) { panic("boom") })
	b.Subscribe(func(Pose) { after++ })
	after = 0

	b.Feed(Pose{Z: 25})
	b.Feed(Pose{Z: 26})

	if after != 2 {
		t.Errorf("subscriber after panicking one received %d deliveries, want 2", after)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	source := capture.NewMockSource([]byte("jpeg"))
	detector := detection.NewMockDetector([]detection.Face{
		detection.SyntheticFace(0.25, 0.5, 0.15),
	})
	b := New(testConfig(), source, detector)

	poses := make(chan Pose, 16)
	b.Subscribe(func(p Pose) {
		select {
		case poses <- p:
		default:
		}
	})
	<-poses // synchronous replay

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !b.Running() {
		t.Fatal("Running() = false after Start")
	}

	// Start while running is a no-op.
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if source.OpenCalls != 1 {
		t.Errorf("OpenCalls = %d after re-entrant Start, want 1", source.OpenCalls)
	}

	select {
	case p := <-poses:
		if p.X <= 0 {
			t.Errorf("detected pose X = %v, want positive (nose left of center)", p.X)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no pose emitted from detection loop")
	}

	b.Stop()
	b.Stop() // idempotent
	if b.Running() {
		t.Error("Running() = true after Stop")
	}
	if detector.CloseCalls != 1 {
		t.Errorf("detector CloseCalls = %d, want 1", detector.CloseCalls)
	}
	if source.CloseCalls != 1 {
		t.Errorf("source CloseCalls = %d, want 1", source.CloseCalls)
	}
	if source.Opened() {
		t.Error("source still open after Stop")
	}
}

func TestStartFailsWhenSourceUnavailable(t *testing.T) {
	source := capture.NewMockSource(nil)
	source.FailOpen(errors.New("device busy"))
	detector := detection.NewMockDetector()
	b := New(testConfig(), source, detector)

	err := b.Start(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("Start error = %v, want ErrSourceUnavailable", err)
	}
	if b.Running() {
		t.Error("Running() = true after failed Start")
	}
	if detector.ReadyCalls != 0 {
		t.Errorf("detector warmed despite failed source, ReadyCalls = %d", detector.ReadyCalls)
	}
}

func TestStartReleasesResourcesWhenDetectorNotReady(t *testing.T) {
	source := capture.NewMockSource([]byte("jpeg"))
	detector := detection.NewMockDetector()
	detector.FailReady(errors.New("model missing"))
	b := New(testConfig(), source, detector)

	err := b.Start(context.Background())
	if !errors.Is(err, ErrDetectorUnavailable) {
		t.Fatalf("Start error = %v, want ErrDetectorUnavailable", err)
	}
	if b.Running() {
		t.Error("Running() = true after failed warmup")
	}
	if detector.CloseCalls != 1 {
		t.Errorf("detector CloseCalls = %d, want 1 (partial release)", detector.CloseCalls)
	}
	if source.CloseCalls != 1 {
		t.Errorf("source CloseCalls = %d, want 1 (partial release)", source.CloseCalls)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStopDuringStartupWins(t *testing.T) {
	source := capture.NewMockSource([]byte("jpeg"))
	detector := detection.NewMockDetector([]detection.Face{
		detection.SyntheticFace(0.5, 0.5, 0.15),
	})
	release := detector.HoldReady()
	b := New(testConfig(), source, detector)

	started := make(chan error, 1)
	go func() { started <- b.Start(context.Background()) }()

	// The source is open while Start sits in the readiness wait.
	waitFor(t, "source open", source.Opened)
	b.Stop()
	release()

	if err := <-started; err != nil {
		t.Fatalf("Start: %v", err)
	}
	if b.Running() {
		t.Error("Running() = true after Stop during startup")
	}
	if detector.CloseCalls != 1 {
		t.Errorf("detector CloseCalls = %d, want 1", detector.CloseCalls)
	}
	if source.CloseCalls != 1 {
		t.Errorf("source CloseCalls = %d, want 1", source.CloseCalls)
	}
	if source.Opened() {
		t.Error("source still open after abandoned startup")
	}

	// No detection loop was spawned against the closed source.
	time.Sleep(20 * time.Millisecond)
	if n := source.Reads(); n != 0 {
		t.Errorf("detection loop read %d frames after Stop", n)
	}

	// The broadcaster is restartable afterwards.
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	waitFor(t, "detection after restart", func() bool { return source.Reads() > 0 })
	b.Stop()
}

func TestCancellingStartContextHaltsDetection(t *testing.T) {
	source := capture.NewMockSource([]byte("jpeg"))
	detector := detection.NewMockDetector([]detection.Face{
		detection.SyntheticFace(0.5, 0.5, 0.15),
	})
	b := New(testConfig(), source, detector)

	ctx, cancel := context.WithCancel(context.Background())
	if err := b.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "first detection", func() bool { return source.Reads() > 0 })

	cancel()
	waitFor(t, "loop to halt", func() bool {
		n := source.Reads()
		time.Sleep(5 * time.Millisecond)
		return source.Reads() == n
	})

	// Cancellation halts detection but does not release resources.
	if !b.Running() {
		t.Error("Running() = false before Stop")
	}
	if !source.Opened() {
		t.Error("source released by context cancellation")
	}

	b.Stop()
	if b.Running() {
		t.Error("Running() = true after Stop")
	}
	if source.CloseCalls != 1 {
		t.Errorf("source CloseCalls = %d, want 1", source.CloseCalls)
	}
}

func TestEmptyFramesKeepLastPose(t *testing.T) {
	source := capture.NewMockSource([]byte("jpeg"))
	detector := detection.NewMockDetector(nil) // every frame: no faces
	b := New(testConfig(), source, detector)

	var deliveries int
	b.Subscribe(func(Pose) { deliveries++ })

	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	b.Stop()

	if deliveries != 1 {
		t.Errorf("deliveries = %d, want 1 (replay only, no emission without a face)", deliveries)
	}
	if b.Last() != DefaultPose() {
		t.Errorf("Last() = %+v, want default pose", b.Last())
	}
}
