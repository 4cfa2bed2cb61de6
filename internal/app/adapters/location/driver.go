package location

import (
	"errors"
	"time"
)

var errSearchCancelled = errors.New("location search cancelled")

// simDriver returns a fixed fix after a short simulated search delay; it
// stands in for real GNSS acquisition, which is out of scope on the bench.
type simDriver struct {
	delay time.Duration
	fix   Fix
}

// NewSimDriver returns the bench stand-in location Driver.
func NewSimDriver() Driver {
	return simDriver{
		delay: 50 * time.Millisecond,
		fix:   Fix{Latitude: 37.7749, Longitude: -122.4194, Accuracy: 25},
	}
}

func (d simDriver) Search(stop <-chan struct{}) (Fix, error) {
	select {
	case <-time.After(d.delay):
		return d.fix, nil
	case <-stop:
		return Fix{}, errSearchCancelled
	}
}
