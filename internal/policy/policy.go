// Package policy answers the pairing and connection questions asked by the
// connection library. The gates are pure: they read the session record and
// never change it.
package policy

import (
	"github.com/go-ble/ble"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
)

// MaxMultipointLinks is the number of AGs served with multipoint enabled.
const MaxMultipointLinks = 2

// CanPairNow reports whether a pairing request may proceed. With secure
// pairing only the discoverable state accepts pairing.
func CanPairNow(d *device.DeviceState) bool {
	if d.State() == device.Limbo || d.State() == device.TestMode {
		return false
	}
	if d.Features.SecurePairing {
		return d.State() == device.ConnDiscoverable
	}
	return true
}

// CanConnect reports whether addr may open a link now.
func CanConnect(d *device.DeviceState, addr ble.Addr) bool {
	if addr == nil || !d.State().PoweredOn() || d.State() == device.TestMode {
		return false
	}
	if _, ok := d.LinkFor(addr); ok {
		// already connected; the profile completes on the existing link
		return true
	}
	limit := 1
	if d.Flags.MultipointEnabled {
		limit = MaxMultipointLinks
	}
	return d.ProfilesConnected() < limit
}

// CanAuthorize reports whether a profile connection from addr is authorised.
// Phonebook and messaging access need an existing SLC with the same AG.
func CanAuthorize(d *device.DeviceState, addr ble.Addr, profile events.Profile) bool {
	switch profile {
	case events.ProfilePBAP, events.ProfileMAP:
		_, ok := d.LinkFor(addr)
		return ok
	default:
		return CanConnect(d, addr)
	}
}

// AutoAcceptConfirmation reports whether a numeric comparison is answered
// without asking the user.
func AutoAcceptConfirmation(d *device.DeviceState) bool {
	return !d.Features.ManInTheMiddle && !d.Features.VoicePromptPairing
}

// ShouldPairOnPowerOn reports whether power-on goes straight to discoverable.
func ShouldPairOnPowerOn(d *device.DeviceState, pdlCount int) bool {
	return d.Features.RemainDiscoverableAtAllTimes || (d.Features.PairIfPDLEmpty && pdlCount == 0)
}
