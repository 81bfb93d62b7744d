package sink

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/device"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/policy"
	"github.com/srg/bsink/internal/sched"
)

// payloadOf extracts the typed payload of msg. A mismatch is logged and the
// message is ignored by the caller.
func payloadOf[T any](a *App, msg sched.Message) (T, bool) {
	p, ok := msg.Payload.(T)
	if !ok {
		a.logger.WithFields(logrus.Fields{
			"event":   msg.ID,
			"payload": msg.Payload,
		}).Warn("Unexpected message payload, dropped")
	}
	return p, ok
}

func (a *App) unhandled(msg sched.Message) {
	atomic.AddInt64(&a.metrics.Unhandled, 1)
	a.logger.WithField("event", msg.ID).Warn("Unhandled message")
}

// initCfm halts on a failed initialization of a library the sink cannot run
// without.
func (a *App) initCfm(msg sched.Message, lib string) {
	cfm, ok := payloadOf[events.InitCfm](a, msg)
	if !ok {
		return
	}
	if cfm.Status != events.StatusSuccess {
		a.logger.WithField("status", cfm.Status).Errorf("%s initialisation failed", lib)
		a.halt(lib + " initialisation failed: " + cfm.Status.String())
		return
	}
	a.logger.Debugf("%s ready", lib)
}

func (a *App) handleConnection(msg sched.Message) {
	switch msg.ID {
	case events.ClInitCfm:
		a.initCfm(msg, "connection library")

	case events.ClSmPinCodeInd:
		ind, ok := payloadOf[events.PinCodeInd](a, msg)
		if !ok {
			return
		}
		accept := policy.CanPairNow(a.dev)
		a.logger.WithField("addr", ind.Addr).WithField("accept", accept).Info("Pin code requested")
		a.warn(a.st.Conn.PinCodeResponse(ind.Addr, a.cfg.Pairing.FixedPIN, accept), "Failed to answer pin code request")

	case events.ClSmUserConfirmationReqInd:
		ind, ok := payloadOf[events.UserConfirmationReqInd](a, msg)
		if !ok {
			return
		}
		switch {
		case !policy.CanPairNow(a.dev):
			a.warn(a.st.Conn.UserConfirmationResponse(ind.Addr, false), "Failed to reject confirmation")
		case policy.AutoAcceptConfirmation(a.dev):
			a.warn(a.st.Conn.UserConfirmationResponse(ind.Addr, true), "Failed to accept confirmation")
		default:
			if prev, pending := a.dev.PendingConfirmation(); pending && prev.String() != ind.Addr.String() {
				a.logger.WithField("addr", prev).Info("Confirmation superseded")
				a.warn(a.st.Conn.UserConfirmationResponse(prev, false), "Failed to reject superseded confirmation")
			}
			a.dev.SetPendingConfirmation(ind.Addr)
			a.logger.WithField("addr", ind.Addr).WithField("passkey", ind.Numeric).Info("Confirmation requested")
			a.raise(events.EventConfirmationRequest)
		}

	case events.ClSmAuthenticateCfm:
		cfm, ok := payloadOf[events.AuthenticateCfm](a, msg)
		if !ok {
			return
		}
		if cfm.Status != events.StatusSuccess {
			a.logger.WithField("addr", cfm.Addr).WithField("status", cfm.Status).Info("Authentication failed")
			a.raise(events.EventPairingFail)
			return
		}
		if cfm.Bonded {
			a.warn(a.st.PDL.Add(cfm.Addr), "Failed to store paired device")
		}
		a.raise(events.EventPairingSuccessful)

	case events.ClSmAuthorizeInd:
		ind, ok := payloadOf[events.AuthorizeInd](a, msg)
		if !ok {
			return
		}
		accept := policy.CanAuthorize(a.dev, ind.Addr, ind.Profile)
		a.warn(a.st.Conn.AuthorizeResponse(ind.Addr, ind.Profile, accept), "Failed to answer authorisation")

	case events.ClSmEncryptionChangeInd:
		if ind, ok := payloadOf[events.EncryptionChangeInd](a, msg); ok {
			a.logger.WithField("addr", ind.Addr).WithField("encrypted", ind.Encrypted).Debug("Encryption changed")
		}

	case events.ClDmAclOpenedInd, events.ClDmAclClosedInd:
		if ind, ok := payloadOf[events.AclInd](a, msg); ok {
			a.logger.WithFields(logrus.Fields{
				"addr":   ind.Addr,
				"status": ind.Status,
				"event":  msg.ID,
			}).Debug("ACL changed")
		}

	case events.ClDmInquireResult:
		res, ok := payloadOf[events.InquireResult](a, msg)
		if !ok {
			return
		}
		if res.Complete {
			if a.dev.Inquiry == device.InquirySubwoofer {
				a.dev.Inquiry = device.InquiryIdle
			}
			return
		}
		a.logger.WithField("addr", res.Addr).WithField("rssi", res.RSSI).Debug("Inquiry result")

	default:
		a.unhandled(msg)
	}
}
