package validation

import "slices"

// Circuit interfaces.
var (
	GigabitInterfaces    = []string{"1000BASE-T", "1000BASE-LX", "1000BASE-SX"}
	TenGigabitInterfaces = []string{"10GBASE-LR", "10GBASE-SR"}
)

var gigabitBandwidths = []string{
	"10 Mbit/s", "20 Mbit/s", "30 Mbit/s", "40 Mbit/s", "50 Mbit/s",
	"60 Mbit/s", "70 Mbit/s", "80 Mbit/s", "90 Mbit/s", "100 Mbit/s",
	"200 Mbit/s", "300 Mbit/s", "400 Mbit/s", "500 Mbit/s", "1 Gbit/s",
}

var tenGigabitExtra = []string{
	"1.5 Gbit/s", "2 Gbit/s", "2.5 Gbit/s", "3 Gbit/s", "3.5 Gbit/s",
	"4 Gbit/s", "4.5 Gbit/s", "5 Gbit/s", "5.5 Gbit/s", "6 Gbit/s",
	"6.5 Gbit/s", "7 Gbit/s", "7.5 Gbit/s", "8 Gbit/s", "8.5 Gbit/s",
	"9 Gbit/s", "9.5 Gbit/s", "10 Gbit/s",
}

// Interfaces returns every supported circuit interface.
func Interfaces() []string {
	return slices.Concat(GigabitInterfaces, TenGigabitInterfaces)
}

// BandwidthsFor lists the bandwidths available on iface.
// An unknown or empty interface gets the full 10G list, so a bandwidth can be chosen
// before the interface in API-driven flows.
func BandwidthsFor(iface string) []string {
	if slices.Contains(GigabitInterfaces, iface) {
		return slices.Clone(gigabitBandwidths)
	}
	return slices.Concat(gigabitBandwidths, tenGigabitExtra)
}

// Bandwidth checks that bw is offered on iface.
func Bandwidth(iface, bw string) error {
	if slices.Contains(BandwidthsFor(iface), bw) {
		return nil
	}
	if slices.Contains(GigabitInterfaces, iface) {
		return Invalid("bandwidth", "%s is not available on a %s interface (maximum 1 Gbit/s)", bw, iface)
	}
	return Invalid("bandwidth", "%q is not a supported bandwidth", bw)
}
