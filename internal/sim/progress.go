package sim

import (
	"sync/atomic"
)

// DefaultProgressInterval is the number of steps between progress reports.
const DefaultProgressInterval = 5000

// Progress is a periodic report from a running Engine. One is sent every
// progress interval steps and one on the final step.
type Progress struct {
	Step    int     `json:"step"`
	Steps   int     `json:"steps"`
	Percent int     `json:"percent"`
	Time    float64 `json:"time"`
	Speed   float64 `json:"speed"`
}

// ProgressObserver receives progress reports. Implementations are called
// synchronously from the integration loop and must not block.
type ProgressObserver interface {
	Progress(p Progress)
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(Progress)

func (f ProgressFunc) Progress(p Progress) { f(p) }

// ChannelObserver forwards progress onto a buffered channel, dropping
// reports when the buffer is full so the loop never waits on a reader.
type ChannelObserver struct {
	C       chan Progress
	dropped atomic.Int64
}

// NewChannelObserver creates a ChannelObserver with the given buffer size.
func NewChannelObserver(buffer int) *ChannelObserver {
	return &ChannelObserver{C: make(chan Progress, buffer)}
}

func (o *ChannelObserver) Progress(p Progress) {
	select {
	case o.C <- p:
	default:
		o.dropped.Add(1)
	}
}

// Dropped returns the number of reports discarded because the buffer was full.
func (o *ChannelObserver) Dropped() int64 {
	return o.dropped.Load()
}

// LogProgress returns an observer that formats each report with logf.
func LogProgress(logf func(format string, v ...interface{})) ProgressObserver {
	return ProgressFunc(func(p Progress) {
		logf("Progress: %d%% | Time: %.5fs | Speed: %.5fm/s", p.Percent, p.Time, p.Speed)
	})
}
