package bus

// RefreshConfig configures the DMA refresh scheduler (spec §3, §4.3).
type RefreshConfig struct {
	Enabled    bool
	PeriodTicks uint32
	Adjust      int32
	Retrigger   bool
}

// RefreshScheduler models the 8237 DRAM-refresh channel stealing a bus
// cycle from the CPU at a fixed period. It never fires mid-cycle: the
// CPU checks TakePending() only between its own bus cycles.
type RefreshScheduler struct {
	cfg            RefreshConfig
	remainingTicks int64
	tcFlag         bool
	pending        bool
}

// NewRefreshScheduler builds a scheduler already loaded for its first
// period.
func NewRefreshScheduler(cfg RefreshConfig) RefreshScheduler {
	return RefreshScheduler{
		cfg:            cfg,
		remainingTicks: int64(cfg.PeriodTicks) + int64(cfg.Adjust),
	}
}

// Advance consumes sysTicks of bus time. When the countdown reaches
// zero, a refresh cycle is interposed before the next CPU bus cycle
// and the countdown reloads with period+adjust. If Retrigger is false,
// a countdown that goes negative (a missed window, e.g. because the
// bus was busy) is dropped rather than accumulated into extra refresh
// cycles.
func (r *RefreshScheduler) Advance(sysTicks uint32) {
	if !r.cfg.Enabled {
		return
	}
	r.remainingTicks -= int64(sysTicks)
	if r.remainingTicks <= 0 {
		r.tcFlag = true
		r.pending = true
		if r.cfg.Retrigger {
			r.remainingTicks += int64(r.cfg.PeriodTicks) + int64(r.cfg.Adjust)
		} else {
			r.remainingTicks = int64(r.cfg.PeriodTicks) + int64(r.cfg.Adjust)
		}
	}
}

// TakePending reports and clears whether a refresh cycle is due.
func (r *RefreshScheduler) TakePending() bool {
	if !r.pending {
		return false
	}
	r.pending = false
	return true
}

// TerminalCount reports whether the refresh channel's terminal-count
// flag is set (debugger/trace visibility only; does not clear it).
func (r *RefreshScheduler) TerminalCount() bool {
	return r.tcFlag
}
