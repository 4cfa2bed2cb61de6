package button

// simDriver never sees a press; the bench has no physical GPIO.
type simDriver struct{}

// NewSimDriver returns the bench stand-in button Driver.
func NewSimDriver() Driver { return simDriver{} }

func (simDriver) Poll() (Press, error) { return PressNone, nil }
