package camera

import "time"

// FrameClock paces transitions: it hands out frame tickers and the wall
// clock each frame samples.
type FrameClock struct {
	Interval time.Duration
	now      func() time.Time
}

func NewFrameClock(interval time.Duration) *FrameClock {
	if interval <= 0 {
		interval = DefaultConfig().FrameInterval
	}
	return &FrameClock{Interval: interval, now: time.Now}
}

func (c *FrameClock) Now() time.Time {
	return c.now()
}

func (c *FrameClock) NewTicker() *time.Ticker {
	return time.NewTicker(c.Interval)
}
