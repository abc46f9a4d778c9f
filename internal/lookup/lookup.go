// Package lookup provides the classification helpers the codec consumes:
// DVB service type to TV/radio mapping and the European frequency raster
// for deriving terrestrial/cable channel numbers.
package lookup

import "example.com/chandb/internal/model"

// SignalKindForServiceType classifies a DVB service type descriptor value.
func SignalKindForServiceType(serviceType int) model.SignalKind {
	switch serviceType {
	case 0x01, 0x11, 0x16, 0x19, 0x1F:
		return model.SignalTV
	case 0x02, 0x0A:
		return model.SignalRadio
	}
	return model.SignalUnknown
}

// ChannelFromFrequency maps a center frequency in MHz onto the European
// UHF/VHF channel raster. Returns 0 when the frequency is outside the
// known bands.
func ChannelFromFrequency(mhz float64) int {
	switch {
	case mhz >= 474 && mhz <= 858:
		// UHF: channel 21 at 474 MHz, 8 MHz spacing.
		return 21 + int(mhz-474)/8
	case mhz >= 177.5 && mhz <= 226.5:
		// VHF band III: channel 5 at 177.5 MHz, 7 MHz spacing.
		return 5 + int(mhz-177.5)/7
	}
	return 0
}
