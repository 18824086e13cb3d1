package broadcast

import (
	"testing"
	"time"

	"github.com/chime-audio/chime/internal/core"
)

func statusNotice(s core.TransportState) core.Notification {
	return core.Notification{Status: &core.StatusNotice{Status: s}}
}

func positionNotice(sec int64) core.Notification {
	return core.Notification{Position: &core.PositionNotice{Clock: sec}}
}

func recv(t *testing.T, sub *Subscriber) core.Notification {
	t.Helper()
	select {
	case n := <-sub.C():
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return core.Notification{}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := New()
	a := hub.Subscribe()
	b := hub.Subscribe()

	hub.Publish(statusNotice(core.StatePlaying))

	for _, sub := range []*Subscriber{a, b} {
		n := recv(t, sub)
		if n.Status == nil || n.Status.Status != core.StatePlaying {
			t.Errorf("notification = %+v, want status playing", n)
		}
	}
}

func TestSubscribeBootstrapsCurrentState(t *testing.T) {
	hub := New()

	list := core.Queue{Title: "Album X", Entries: []core.QueueEntry{{Position: 0}}}
	hub.Publish(core.Notification{CurrentTrackList: &core.TrackListNotice{List: list}})
	hub.Publish(positionNotice(45))
	hub.Publish(statusNotice(core.StatePaused))

	// Attach mid-session: bootstrap must arrive before anything else, in
	// track list, position, status order.
	sub := hub.Subscribe()

	n := recv(t, sub)
	if n.CurrentTrackList == nil || n.CurrentTrackList.List.Title != "Album X" {
		t.Fatalf("first bootstrap notification = %+v, want current track list", n)
	}
	n = recv(t, sub)
	if n.Position == nil || n.Position.Clock != 45 {
		t.Fatalf("second bootstrap notification = %+v, want position 45", n)
	}
	n = recv(t, sub)
	if n.Status == nil || n.Status.Status != core.StatePaused {
		t.Fatalf("third bootstrap notification = %+v, want status paused", n)
	}
}

func TestBootstrapReflectsLatestOnly(t *testing.T) {
	hub := New()
	hub.Publish(statusNotice(core.StatePlaying))
	hub.Publish(statusNotice(core.StateStopped))

	sub := hub.Subscribe()
	n := recv(t, sub)
	if n.Status == nil || n.Status.Status != core.StateStopped {
		t.Errorf("bootstrap status = %+v, want stopped", n)
	}
	select {
	case extra := <-sub.C():
		t.Errorf("unexpected extra bootstrap notification %+v", extra)
	default:
	}
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	hub := NewWithBuffer(2)
	sub := hub.Subscribe()

	// Nobody reading: publishes beyond the buffer drop the oldest.
	for i := int64(1); i <= 5; i++ {
		hub.Publish(positionNotice(i))
	}

	first := recv(t, sub)
	second := recv(t, sub)
	if first.Position.Clock != 4 || second.Position.Clock != 5 {
		t.Errorf("buffered positions = %d, %d, want 4, 5", first.Position.Clock, second.Position.Clock)
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewWithBuffer(1)
	_ = hub.Subscribe() // never read

	done := make(chan struct{})
	go func() {
		for i := int64(0); i < 1000; i++ {
			hub.Publish(positionNotice(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}

func TestClosedSubscriberPrunedOnPublish(t *testing.T) {
	hub := New()
	sub := hub.Subscribe()
	keep := hub.Subscribe()

	sub.Close()
	hub.Publish(statusNotice(core.StatePlaying))

	if got := hub.SubscriberCount(); got != 1 {
		t.Errorf("SubscriberCount = %d, want 1", got)
	}

	// The pruned subscriber's channel is closed after its buffer drains.
	for {
		if _, ok := <-sub.ch; !ok {
			break
		}
	}

	n := recv(t, keep)
	if n.Status == nil {
		t.Errorf("surviving subscriber missed notification: %+v", n)
	}
}
