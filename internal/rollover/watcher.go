// Package rollover watches the wall clock in the background and tells the
// Bubble Tea program when the local date changes or a reminder time is
// reached.
package rollover

import (
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/medreminder/internal/logging"
	"github.com/nhle/medreminder/internal/model"
)

// DayChangedMsg is a tea.Msg sent when the local date moves on.
type DayChangedMsg struct {
	From string
	To   string
}

// ReminderMsg is a tea.Msg sent when a period's reminder time is reached.
type ReminderMsg struct {
	Period model.Period
	At     time.Time
}

const defaultInterval = 30 * time.Second

// Watcher polls the clock on a ticker.
type Watcher struct {
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	msgCh  chan tea.Msg
	stopCh chan struct{}

	mu      sync.Mutex
	running bool
	last    time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets how often the clock is checked.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) { w.now = now }
}

// New creates a watcher. It does nothing until Start is called.
func New(logger *slog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		interval: defaultInterval,
		now:      time.Now,
		logger:   logging.OrDiscard(logger),
		msgCh:    make(chan tea.Msg, 8),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the ticker goroutine and returns a command that waits for
// the first message. Calling Start on a running watcher is a no-op; a
// stopped watcher can be started again.
func (w *Watcher) Start() tea.Cmd {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.last = w.now()
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()

	go w.loop(stop)

	return w.WaitForNext()
}

// Stop halts the ticker goroutine.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	w.running = false
}

// WaitForNext returns a command that blocks until the watcher has
// something to report. It should be re-issued after each message.
func (w *Watcher) WaitForNext() tea.Cmd {
	w.mu.Lock()
	stop := w.stopCh
	w.mu.Unlock()

	return func() tea.Msg {
		select {
		case msg := <-w.msgCh:
			return msg
		case <-stop:
			return nil
		}
	}
}

func (w *Watcher) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *Watcher) tick() {
	now := w.now()

	w.mu.Lock()
	prev := w.last
	w.last = now
	w.mu.Unlock()

	for _, msg := range Between(prev, now) {
		if dc, ok := msg.(DayChangedMsg); ok {
			w.logger.Info("local date changed", slog.String("from", dc.From), slog.String("to", dc.To))
		}
		select {
		case w.msgCh <- msg:
		default:
			// Drop if nobody is listening.
		}
	}
}

// Between returns the messages for the interval (prev, now]: a
// DayChangedMsg if the local date differs, followed by a ReminderMsg for
// each period clock time crossed on now's date.
func Between(prev, now time.Time) []tea.Msg {
	if !now.After(prev) {
		return nil
	}

	var msgs []tea.Msg
	from, to := model.Today(prev), model.Today(now)
	if from != to {
		msgs = append(msgs, DayChangedMsg{From: from, To: to})
	}

	local := now.Local()
	y, m, d := local.Date()
	for _, p := range model.Periods {
		at, err := time.ParseInLocation("15:04", p.Clock(), local.Location())
		if err != nil {
			continue
		}
		due := time.Date(y, m, d, at.Hour(), at.Minute(), 0, 0, local.Location())
		if due.After(prev) && !due.After(now) {
			msgs = append(msgs, ReminderMsg{Period: p, At: due})
		}
	}
	return msgs
}
