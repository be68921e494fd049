package ledger

import (
	"time"

	"github.com/chainops-dev/testnet-funder/pkg/logger"
)

// Reason classifies an eligibility decision.
type Reason int

const (
	Eligible Reason = iota
	DailyLimitReached
	AddressCooldown
)

func (r Reason) String() string {
	switch r {
	case Eligible:
		return "eligible"
	case DailyLimitReached:
		return "daily limit reached"
	case AddressCooldown:
		return "address cooldown"
	default:
		return "unknown"
	}
}

// Decision is the outcome of one eligibility check. NextReset is set for
// DailyLimitReached, HoursRemaining for AddressCooldown.
type Decision struct {
	Eligible       bool
	Reason         Reason
	NextReset      time.Time
	HoursRemaining int
}

// Snapshot is a read-only view of the ledger for the status display.
type Snapshot struct {
	DailyCount int
	MaxPerDay  int
	NextReset  time.Time
	Window     time.Duration
	Claims     map[string]time.Time
}

// Tracker owns the cooldown and daily-quota rules. The ledger file is
// reloaded on every call; no state survives across process invocations.
// Execution is single-threaded by design, so the tracker takes no locks.
type Tracker struct {
	store     *Store
	maxPerDay int
	window    time.Duration
	now       func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithNow overrides the clock. Tests use this to step through windows.
func WithNow(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithWindow overrides the 24h cooldown/quota window.
func WithWindow(window time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.window = window
	}
}

func NewTracker(store *Store, maxPerDay int, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:     store,
		maxPerDay: maxPerDay,
		window:    24 * time.Hour,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Evaluate decides whether address may claim now. Evaluation lazily resets
// the daily window when it has elapsed and persists that reset immediately,
// so an idle process is corrected on its next real check. The daily-limit
// gate is checked before the per-address cooldown.
func (t *Tracker) Evaluate(address string) Decision {
	now := t.now()
	nowMillis := now.UnixMilli()
	l := t.store.Load(nowMillis)

	if now.Sub(time.UnixMilli(l.LastReset)) >= t.window {
		l.DailyCount = 0
		l.LastReset = nowMillis
		t.store.Save(l)
		logger.Debugf("daily claim window reset at %s", now.Format(time.RFC3339))
	}

	if l.DailyCount >= t.maxPerDay {
		return Decision{
			Eligible:  false,
			Reason:    DailyLimitReached,
			NextReset: time.UnixMilli(l.LastReset).Add(t.window),
		}
	}

	if last, ok := l.Claims[address]; ok {
		elapsed := now.Sub(time.UnixMilli(last))
		if elapsed < t.window {
			return Decision{
				Eligible:       false,
				Reason:         AddressCooldown,
				HoursRemaining: hoursRemaining(t.window - elapsed),
			}
		}
	}

	return Decision{Eligible: true, Reason: Eligible}
}

// RecordClaim stamps a successful claim for address and bumps the daily
// counter. It performs no eligibility check: callers confirm the faucet
// call succeeded and have already passed Evaluate, so it must not be
// called speculatively.
func (t *Tracker) RecordClaim(address string) {
	nowMillis := t.now().UnixMilli()
	l := t.store.Load(nowMillis)
	l.Claims[address] = nowMillis
	l.DailyCount++
	t.store.Save(l)
}

// Status returns the current ledger state for display. Like Evaluate, it
// applies the lazy window reset first so the view is never stale.
func (t *Tracker) Status() Snapshot {
	now := t.now()
	nowMillis := now.UnixMilli()
	l := t.store.Load(nowMillis)

	if now.Sub(time.UnixMilli(l.LastReset)) >= t.window {
		l.DailyCount = 0
		l.LastReset = nowMillis
		t.store.Save(l)
	}

	claims := make(map[string]time.Time, len(l.Claims))
	for addr, stamp := range l.Claims {
		claims[addr] = time.UnixMilli(stamp)
	}

	return Snapshot{
		DailyCount: l.DailyCount,
		MaxPerDay:  t.maxPerDay,
		NextReset:  time.UnixMilli(l.LastReset).Add(t.window),
		Window:     t.window,
		Claims:     claims,
	}
}

// hoursRemaining rounds the remaining cooldown up to whole hours. A
// cooldown still in effect is never reported as zero hours.
func hoursRemaining(remaining time.Duration) int {
	hours := int(remaining / time.Hour)
	if remaining%time.Hour != 0 {
		hours++
	}
	if hours < 1 {
		hours = 1
	}
	return hours
}
