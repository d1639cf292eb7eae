package clock

import "time"

// Clock is the time source used by the session timer, the offline cache
// and the sync queue. Production code uses Real(), tests use Fake().
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers ticks on C, same as time.Ticker. C has capacity 1,
// ticks are dropped if the consumer falls behind.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns off the ticker. C is not closed.
func (t *Ticker) Stop() {
	t.stopFunc()
}

type realClock struct{}

func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) NewTicker(d time.Duration) *Ticker {
	t := time.NewTicker(d)
	return &Ticker{
		C:        t.C,
		stopFunc: t.Stop,
	}
}
