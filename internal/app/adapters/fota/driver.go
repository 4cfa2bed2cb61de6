package fota

// simDriver is the bench stand-in image-apply driver: it accepts any
// staged image without touching the filesystem. Production wiring
// replaces this with the real flash/bootloader apply step.
type simDriver struct{}

// NewSimDriver returns the default bench Driver.
func NewSimDriver() Driver { return &simDriver{} }

func (d *simDriver) ApplyImage(path string) error { return nil }
