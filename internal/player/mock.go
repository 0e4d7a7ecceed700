package player

import (
	"sync"
	"time"
)

// Mock is a test double for the output device.
type Mock struct {
	mu sync.Mutex

	loadErr  error
	startErr error
	seekErr  error

	loadCalls    []string
	installCalls []string
	closedMedia  []string
	startCalls   int
	stopCalls    int
	pauseCalls   int
	seekCalls    []time.Duration

	loadDuration time.Duration
	position     time.Duration
	duration     time.Duration
	volume       float64

	loadDelay time.Duration

	finishedCh chan struct{}
}

// NewMock creates a mock device for testing.
func NewMock() *Mock {
	return &Mock{
		volume:     1.0,
		finishedCh: make(chan struct{}, 1),
	}
}

// mockMedia records whether a load result was committed or discarded.
type mockMedia struct {
	owner    *Mock
	source   string
	duration time.Duration
}

func (mm *mockMedia) Duration() time.Duration { return mm.duration }

func (mm *mockMedia) Close() error {
	mm.owner.mu.Lock()
	defer mm.owner.mu.Unlock()
	mm.owner.closedMedia = append(mm.owner.closedMedia, mm.source)
	return nil
}

func (m *Mock) Load(source string) (Media, error) {
	m.mu.Lock()
	m.loadCalls = append(m.loadCalls, source)
	delay := m.loadDelay
	m.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return &mockMedia{owner: m, source: source, duration: m.loadDuration}, nil
}

func (m *Mock) Install(med Media) time.Duration {
	mm, ok := med.(*mockMedia)
	if !ok || mm == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installCalls = append(m.installCalls, mm.source)
	m.duration = mm.duration
	m.position = 0
	return mm.duration
}

func (m *Mock) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls++
	return m.startErr
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	m.position = 0
	m.duration = 0
}

func (m *Mock) SeekTo(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, pos)
	if m.seekErr != nil {
		return m.seekErr
	}
	m.position = pos
	return nil
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = clampLevel(level)
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Finished() <-chan struct{} { return m.finishedCh }

func (m *Mock) Close() error { return nil }

// Test helpers

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

func (m *Mock) SetLoadDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadDuration = d
}

func (m *Mock) SetLoadDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadDelay = d
}

func (m *Mock) SetPosition(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
}

func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.loadCalls))
	copy(out, m.loadCalls)
	return out
}

func (m *Mock) InstallCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.installCalls))
	copy(out, m.installCalls)
	return out
}

// ClosedMedia returns the sources whose load results were discarded
// without being installed.
func (m *Mock) ClosedMedia() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.closedMedia))
	copy(out, m.closedMedia)
	return out
}

func (m *Mock) StartCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startCalls
}

func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.seekCalls))
	copy(out, m.seekCalls)
	return out
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

// SimulateFinished simulates natural end of media.
func (m *Mock) SimulateFinished() {
	select {
	case m.finishedCh <- struct{}{}:
	default:
	}
}
