package playback

import (
	"testing"

	"github.com/lmeunier/groove/internal/player"
)

func TestSubscribeDeliversImmediateSnapshot(t *testing.T) {
	m := player.NewMock()
	e := newTestEngine(m)
	defer e.Close()

	e.SetPlaylist(testTracks(2))
	e.SetVolume(0.4)

	var got []State
	unsub := e.Subscribe(func(s State) { got = append(got, s) })
	defer unsub()

	if len(got) != 1 {
		t.Fatalf("got %d snapshots on subscribe, want 1", len(got))
	}
	if got[0].Volume != 0.4 || len(got[0].Playlist) != 2 {
		t.Errorf("snapshot = %+v, want current state", got[0])
	}
}

func TestSubscribersNotifiedInOrder(t *testing.T) {
	m := player.NewMock()
	e := newTestEngine(m)
	defer e.Close()

	var order []string
	unsubA := e.Subscribe(func(State) { order = append(order, "a") })
	defer unsubA()
	unsubB := e.Subscribe(func(State) { order = append(order, "b") })
	defer unsubB()

	order = order[:0]
	e.SetVolume(0.5)

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("notification order = %v, want [a b]", order)
	}
}

func TestEverySubscriberSeesEveryChange(t *testing.T) {
	m := player.NewMock()
	e := newTestEngine(m)
	defer e.Close()

	var volumes []float64
	unsub := e.Subscribe(func(s State) { volumes = append(volumes, s.Volume) })
	defer unsub()

	e.SetVolume(0.2)
	e.SetVolume(0.7)
	e.SetVolume(0.9)

	want := []float64{1.0, 0.2, 0.7, 0.9}
	if len(volumes) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(volumes), len(want))
	}
	for i := range want {
		if volumes[i] != want[i] {
			t.Errorf("volumes[%d] = %v, want %v", i, volumes[i], want[i])
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	m := player.NewMock()
	e := newTestEngine(m)
	defer e.Close()

	var count int
	unsub := e.Subscribe(func(State) { count++ })

	e.SetVolume(0.5)
	unsub()
	e.SetVolume(0.6)

	if count != 2 { // initial snapshot + first change
		t.Errorf("count = %d, want 2", count)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	m := player.NewMock()
	e := newTestEngine(m)
	defer e.Close()

	var countA, countB int
	unsubA := e.Subscribe(func(State) { countA++ })
	unsubB := e.Subscribe(func(State) { countB++ })
	defer unsubB()

	unsubA()
	unsubA()

	e.SetVolume(0.5)
	if countA != 1 {
		t.Errorf("countA = %d, want 1", countA)
	}
	if countB != 2 {
		t.Errorf("repeated unsubscribe affected another subscriber, countB = %d", countB)
	}
}

func TestSubscribeAfterCloseIsInert(t *testing.T) {
	m := player.NewMock()
	e := newTestEngine(m)
	e.Close()

	var count int
	unsub := e.Subscribe(func(State) { count++ })
	unsub()

	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
