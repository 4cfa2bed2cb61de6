package environmental

// simDriver returns a fixed bench reading; no real sensor on the bench.
type simDriver struct{}

// NewSimDriver returns the bench stand-in environmental Driver.
func NewSimDriver() Driver { return simDriver{} }

func (simDriver) Read() (Reading, error) {
	return Reading{TemperatureC: 21.5, HumidityPct: 40}, nil
}
