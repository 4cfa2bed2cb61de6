package led

// simDriver discards indicator changes; no physical LED on the bench.
type simDriver struct{}

// NewSimDriver returns the bench stand-in LED Driver.
func NewSimDriver() Driver { return simDriver{} }

func (simDriver) Set(Indicator) error { return nil }
