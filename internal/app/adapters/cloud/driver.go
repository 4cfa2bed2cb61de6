package cloud

// simDriver is the bench stand-in cloud transport: connects immediately,
// answers shadow polls with no update pending, and discards payloads.
// Production wiring replaces this with the real MQTT/HTTP cloud client.
type simDriver struct{}

// NewSimDriver returns the default bench Driver.
func NewSimDriver() Driver { return &simDriver{} }

func (d *simDriver) Connect() error               { return nil }
func (d *simDriver) Disconnect()                   {}
func (d *simDriver) SendPayload(data []byte) error { return nil }
func (d *simDriver) PollShadow() ([]byte, error)   { return nil, nil }
