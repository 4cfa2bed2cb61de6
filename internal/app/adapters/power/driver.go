package power

import (
	"github.com/shirou/gopsutil/v4/host"
)

// simDriver stands in for a real fuel-gauge/PMIC read. It derives a
// plausible battery reading from host uptime so repeated samples drift
// downward instead of returning a constant value, which is enough to
// exercise the adapter's drain-rate tracking on a bench without hardware.
type simDriver struct{}

// NewSimDriver returns the bench stand-in power Driver.
func NewSimDriver() Driver { return simDriver{} }

func (simDriver) Read() (Reading, error) {
	info, err := host.Info()
	if err != nil {
		return Reading{}, err
	}

	uptimeMinutes := float64(info.Uptime) / 60
	percent := 100 - uptimeMinutes
	if percent < 0 {
		percent = 0
	}

	temps, err := host.SensorsTemperatures()
	tempC := 25.0
	if err == nil && len(temps) > 0 {
		tempC = temps[0].Temperature
	}

	return Reading{PercentRemaining: percent, TemperatureC: tempC}, nil
}
