package transfer

import (
	"sync"
	"time"
)

// Phase enumerates the four timed copy phases of a benchmark run.
type Phase int

const (
	// PhaseLargeUpload is the sequential large file upload (local to target).
	PhaseLargeUpload Phase = iota

	// PhaseLargeDownload is the sequential large file download (target to local).
	PhaseLargeDownload

	// PhaseSmallUpload is the small file batch upload (local to target).
	PhaseSmallUpload

	// PhaseSmallDownload is the small file batch download (target to local).
	PhaseSmallDownload

	phaseCount
)

// String implements [fmt.Stringer] for a [Phase].
func (p Phase) String() string {
	switch p {
	case PhaseLargeUpload:
		return "Large Upload"
	case PhaseLargeDownload:
		return "Large Download"
	case PhaseSmallUpload:
		return "Small Upload"
	case PhaseSmallDownload:
		return "Small Download"
	default:
		return "Unknown"
	}
}

// Progress is a point-in-time snapshot of a phase, for consumption by the UI.
type Progress struct {
	HasStarted  bool
	HasFinished bool

	ProgressPct float64

	BytesTotal uint64
	BytesDone  uint64
	ItemsTotal int
	ItemsDone  int

	StartTime  time.Time
	FinishTime time.Time
	ETA        time.Time
	TimeLeft   time.Duration

	// TransferRate is the smoothed transfer rate in bytes per second.
	TransferRate float64
}

// phaseInfo tracks the live state of a single phase.
type phaseInfo struct {
	sync.RWMutex

	started  bool
	finished bool

	bytesTotal uint64
	bytesDone  uint64
	itemsTotal int
	itemsDone  int

	startTime  time.Time
	finishTime time.Time

	rate float64
}

func (p *phaseInfo) start(bytesTotal uint64, itemsTotal int) {
	p.Lock()
	defer p.Unlock()

	p.started = true
	p.finished = false
	p.startTime = time.Now()
	p.finishTime = time.Time{}
	p.bytesTotal = bytesTotal
	p.bytesDone = 0
	p.itemsTotal = itemsTotal
	p.itemsDone = 0
	p.rate = 0
}

func (p *phaseInfo) addBytes(n uint64) {
	p.Lock()
	defer p.Unlock()

	p.bytesDone += n

	elapsed := time.Since(p.startTime)
	if elapsed < time.Second {
		return
	}

	instantRate := float64(p.bytesDone) / elapsed.Seconds()

	if p.rate == 0 {
		p.rate = instantRate
	} else {
		p.rate = 0.7*p.rate + 0.3*instantRate //nolint:mnd
	}
}

func (p *phaseInfo) addItem() {
	p.Lock()
	defer p.Unlock()

	p.itemsDone++
}

func (p *phaseInfo) end() {
	p.Lock()
	defer p.Unlock()

	p.finished = true
	p.finishTime = time.Now()
	p.bytesDone = p.bytesTotal
	p.itemsDone = p.itemsTotal
}

func (p *phaseInfo) progress() Progress {
	p.RLock()
	defer p.RUnlock()

	progress := Progress{
		HasStarted:   p.started,
		HasFinished:  p.finished,
		BytesTotal:   p.bytesTotal,
		BytesDone:    p.bytesDone,
		ItemsTotal:   p.itemsTotal,
		ItemsDone:    p.itemsDone,
		StartTime:    p.startTime,
		FinishTime:   p.finishTime,
		TransferRate: p.rate,
	}

	if p.bytesTotal > 0 {
		progress.ProgressPct = float64(p.bytesDone) / float64(p.bytesTotal) * 100 //nolint:mnd
		progress.ProgressPct = max(float64(0), min(progress.ProgressPct, float64(100)))
	}

	if p.started && !p.finished && p.rate > 0 && p.bytesDone < p.bytesTotal {
		bytesRemaining := p.bytesTotal - p.bytesDone
		secondsRemaining := float64(bytesRemaining) / p.rate

		progress.TimeLeft = time.Duration(secondsRemaining * float64(time.Second))
		progress.ETA = time.Now().Add(progress.TimeLeft)
	}

	return progress
}

// Tracker tracks the live state of all benchmark phases, for polling by the
// UI while the timed copy loops are running.
type Tracker struct {
	phases [phaseCount]*phaseInfo
}

// NewTracker returns a pointer to a new [Tracker].
func NewTracker() *Tracker {
	tracker := &Tracker{}
	for i := range tracker.phases {
		tracker.phases[i] = &phaseInfo{}
	}

	return tracker
}

// Progress returns the [Progress] snapshot for a given [Phase].
func (t *Tracker) Progress(phase Phase) Progress {
	return t.phases[phase].progress()
}
