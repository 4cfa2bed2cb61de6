package network

// simDriver is the bench stand-in modem driver: every call succeeds
// immediately, since no real modem is attached in this environment.
// Production deployments provide a Driver backed by the actual modem
// control surface instead of wiring this one.
type simDriver struct {
	mode string
}

// NewSimDriver returns the default bench Driver.
func NewSimDriver() Driver {
	return &simDriver{mode: "LTEM"}
}

func (d *simDriver) Connect() error    { return nil }
func (d *simDriver) Disconnect() error { return nil }

func (d *simDriver) SetSystemMode(mode string) (string, error) {
	if mode != "" {
		d.mode = mode
	}
	return d.mode, nil
}
