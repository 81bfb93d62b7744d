package sim

import (
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/sched"
	"github.com/srg/bsink/internal/stack"
	"github.com/srg/bsink/pkg/config"
)

// Options control the simulated libraries.
type Options struct {
	// AutoRespond makes the profile libraries confirm requests as a
	// cooperative AG would.
	AutoRespond bool
	// ToneDuration is how long a tone plays before AudioToneCompleteInd.
	ToneDuration time.Duration
}

// Sim is the full set of simulated collaborators sharing one journal.
type Sim struct {
	*Journal

	Conn      *Connection
	PDL       *PDL
	HFP       *HFP
	A2DP      *A2DP
	AVRCP     *AVRCP
	Audio     *Audio
	LEDs      *LEDs
	Amp       *Amp
	FM        *FM
	Subwoofer *Subwoofer
	Display   *Display
	Power     *Power

	opts Options
	q    sched.Scheduler
}

// New creates simulated collaborators posting responses to q.
func New(q sched.Scheduler, opts Options, logger *logrus.Logger) *Sim {
	j := NewJournal(logger)
	s := &Sim{Journal: j, opts: opts, q: q}
	s.Conn = &Connection{s: s}
	s.PDL = &PDL{s: s}
	s.HFP = &HFP{s: s}
	s.A2DP = &A2DP{s: s}
	s.AVRCP = &AVRCP{s: s}
	s.Audio = &Audio{s: s}
	s.LEDs = &LEDs{s: s}
	s.Amp = &Amp{s: s}
	s.FM = &FM{s: s, frequency: 87500}
	s.Subwoofer = &Subwoofer{s: s}
	s.Display = &Display{s: s}
	s.Power = &Power{s: s}
	return s
}

// Stack assembles the collaborators. Persistence and peripherals are owned
// by their own packages and are passed in.
func (s *Sim) Stack(persister stack.Persister, peripherals stack.Peripherals) *stack.Stack {
	return &stack.Stack{
		Conn:        s.Conn,
		PDL:         s.PDL,
		HFP:         s.HFP,
		A2DP:        s.A2DP,
		AVRCP:       s.AVRCP,
		Audio:       s.Audio,
		LEDs:        s.LEDs,
		Amp:         s.Amp,
		FM:          s.FM,
		Subwoofer:   s.Subwoofer,
		Display:     s.Display,
		Power:       s.Power,
		Peripherals: peripherals,
		Persist:     persister,
	}
}

// respond queues a confirmation when auto-responses are on. Responses share
// identifiers, so they are plain sends and never replace each other.
func (s *Sim) respond(id events.ID, payload any) {
	if !s.opts.AutoRespond {
		return
	}
	s.q.Send(id, payload)
}

// Connection simulates the connection library.
type Connection struct {
	s    *Sim
	Scan stack.ScanMode
}

func (c *Connection) SetScanMode(mode stack.ScanMode) error {
	if err := c.s.record("conn.SetScanMode", mode); err != nil {
		return err
	}
	c.Scan = mode
	return nil
}

func (c *Connection) PinCodeResponse(addr ble.Addr, pin string, accept bool) error {
	if err := c.s.record("conn.PinCodeResponse", addr, pin, accept); err != nil {
		return err
	}
	if accept {
		c.s.respond(events.ClSmAuthenticateCfm, events.AuthenticateCfm{Addr: addr, Status: events.StatusSuccess, Bonded: true})
	}
	return nil
}

func (c *Connection) UserConfirmationResponse(addr ble.Addr, accept bool) error {
	if err := c.s.record("conn.UserConfirmationResponse", addr, accept); err != nil {
		return err
	}
	if accept {
		c.s.respond(events.ClSmAuthenticateCfm, events.AuthenticateCfm{Addr: addr, Status: events.StatusSuccess, Bonded: true})
	}
	return nil
}

func (c *Connection) AuthorizeResponse(addr ble.Addr, profile events.Profile, accept bool) error {
	return c.s.record("conn.AuthorizeResponse", addr, profile, accept)
}

func (c *Connection) RefreshEncryptionKey(addr ble.Addr) error {
	return c.s.record("conn.RefreshEncryptionKey", addr)
}

func (c *Connection) SetSniffSubrating(enable bool) error {
	return c.s.record("conn.SetSniffSubrating", enable)
}

func (c *Connection) EnterDUTMode() error {
	return c.s.record("conn.EnterDUTMode")
}

func (c *Connection) EnterTxContinuousTest() error {
	return c.s.record("conn.EnterTxContinuousTest")
}

// PDL simulates the paired device list.
type PDL struct {
	s     *Sim
	mu    sync.Mutex
	addrs []ble.Addr
}

func (p *PDL) Add(addr ble.Addr) error {
	if err := p.s.record("pdl.Add", addr); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := []ble.Addr{addr}
	for _, a := range p.addrs {
		if a.String() != addr.String() {
			kept = append(kept, a)
		}
	}
	p.addrs = kept
	return nil
}

func (p *PDL) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.addrs)
}

func (p *PDL) MostRecent() (ble.Addr, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.addrs) == 0 {
		return nil, false
	}
	return p.addrs[0], true
}

func (p *PDL) Clear() error {
	if err := p.s.record("pdl.Clear"); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addrs = nil
	return nil
}

// HFP simulates the hands-free profile library.
type HFP struct {
	s *Sim
}

func (h *HFP) Connect(addr ble.Addr) error {
	if err := h.s.record("hfp.Connect", addr); err != nil {
		return err
	}
	h.s.respond(events.HfpSlcConnectCfm, events.SlcConnectCfm{Addr: addr, Status: events.StatusSuccess})
	return nil
}

func (h *HFP) Disconnect(link events.Link) error {
	if err := h.s.record("hfp.Disconnect", link); err != nil {
		return err
	}
	h.s.respond(events.HfpSlcDisconnectInd, events.SlcDisconnectInd{Link: link, Status: events.StatusSuccess})
	return nil
}

func (h *HFP) Answer(link events.Link) error {
	if err := h.s.record("hfp.Answer", link); err != nil {
		return err
	}
	h.s.respond(events.HfpCallStateInd, events.CallStateInd{Link: link, State: events.CallActive})
	return nil
}

func (h *HFP) Reject(link events.Link) error {
	if err := h.s.record("hfp.Reject", link); err != nil {
		return err
	}
	h.s.respond(events.HfpCallStateInd, events.CallStateInd{Link: link, State: events.CallIdle})
	return nil
}

func (h *HFP) Hangup(link events.Link) error {
	if err := h.s.record("hfp.Hangup", link); err != nil {
		return err
	}
	h.s.respond(events.HfpCallStateInd, events.CallStateInd{Link: link, State: events.CallIdle})
	return nil
}

func (h *HFP) TransferAudio(link events.Link, toHeadset bool) error {
	return h.s.record("hfp.TransferAudio", link, toHeadset)
}

func (h *HFP) VoiceRecognition(link events.Link, enable bool) error {
	if err := h.s.record("hfp.VoiceRecognition", link, enable); err != nil {
		return err
	}
	h.s.respond(events.HfpVoiceRecognitionEnableCfm, events.LinkStatusCfm{Link: link, Status: events.StatusSuccess})
	return nil
}

func (h *HFP) DialLastNumber(link events.Link) error {
	if err := h.s.record("hfp.DialLastNumber", link); err != nil {
		return err
	}
	h.s.respond(events.HfpDialLastNumberCfm, events.LinkStatusCfm{Link: link, Status: events.StatusSuccess})
	return nil
}

func (h *HFP) DialNumber(link events.Link, number string) error {
	if err := h.s.record("hfp.DialNumber", link, number); err != nil {
		return err
	}
	h.s.respond(events.HfpDialNumberCfm, events.LinkStatusCfm{Link: link, Status: events.StatusSuccess})
	return nil
}

func (h *HFP) ThreeWay(link events.Link, op stack.ThreeWayOp) error {
	return h.s.record("hfp.ThreeWay", link, op)
}

func (h *HFP) ResponseAndHold(link events.Link, op stack.HoldOp) error {
	return h.s.record("hfp.ResponseAndHold", link, op)
}

func (h *HFP) SetSpeakerVolume(link events.Link, level int) error {
	return h.s.record("hfp.SetSpeakerVolume", link, level)
}

// A2DP simulates the A2DP library.
type A2DP struct {
	s *Sim
}

func (a *A2DP) Connect(addr ble.Addr) error {
	if err := a.s.record("a2dp.Connect", addr); err != nil {
		return err
	}
	a.s.respond(events.A2dpSignallingConnectCfm, events.AddrStatusCfm{Addr: addr, Status: events.StatusSuccess})
	return nil
}

func (a *A2DP) Disconnect(addr ble.Addr) error {
	if err := a.s.record("a2dp.Disconnect", addr); err != nil {
		return err
	}
	a.s.respond(events.A2dpSignallingDisconnectInd, events.AddrInd{Addr: addr})
	return nil
}

// AVRCP simulates the remote control library.
type AVRCP struct {
	s *Sim
}

func (a *AVRCP) Passthrough(op events.AvrcpOp, pressed bool) error {
	if err := a.s.record("avrcp.Passthrough", op, pressed); err != nil {
		return err
	}
	if pressed {
		a.s.respond(events.AvrcpPassthroughCfm, events.PassthroughCfm{Op: op, Status: events.StatusSuccess})
	}
	return nil
}

func (a *AVRCP) Disconnect() error {
	return a.s.record("avrcp.Disconnect")
}

// Audio simulates the audio plugin. Tones always complete after ToneDuration.
type Audio struct {
	s *Sim
}

func (a *Audio) SetMicMute(mute bool) error {
	return a.s.record("audio.SetMicMute", mute)
}

func (a *Audio) SetVolume(level int) error {
	return a.s.record("audio.SetVolume", level)
}

func (a *Audio) PlayTone(name string) error {
	if err := a.s.record("audio.PlayTone", name); err != nil {
		return err
	}
	a.s.q.SendAfter(events.AudioToneCompleteInd, a.s.opts.ToneDuration, events.StatusInd{Status: events.StatusSuccess})
	return nil
}

func (a *Audio) SetLanguage(language int) error {
	return a.s.record("audio.SetLanguage", language)
}

// LEDs simulates the LED hardware.
type LEDs struct {
	s *Sim
}

func (l *LEDs) Play(pattern config.LEDPattern) error {
	return l.s.record("leds.Play", pattern.Color, pattern.Duration())
}

func (l *LEDs) Stop() error {
	return l.s.record("leds.Stop")
}

// Amp simulates the amplifier enable line.
type Amp struct {
	s       *Sim
	Enabled bool
}

func (a *Amp) SetAmp(enabled bool) error {
	if err := a.s.record("amp.SetAmp", enabled); err != nil {
		return err
	}
	a.Enabled = enabled
	return nil
}

// FM simulates the FM receiver.
type FM struct {
	s         *Sim
	frequency int
}

func (f *FM) On() error {
	if err := f.s.record("fm.On"); err != nil {
		return err
	}
	f.s.respond(events.FmInitCfm, events.InitCfm{Status: events.StatusSuccess})
	return nil
}

func (f *FM) Off() error {
	return f.s.record("fm.Off")
}

func (f *FM) Tune(up bool) error {
	if err := f.s.record("fm.Tune", up); err != nil {
		return err
	}
	if up {
		f.frequency += 100
	} else {
		f.frequency -= 100
	}
	f.s.respond(events.FmTuneCfm, events.TuneCfm{FrequencyKHz: f.frequency})
	return nil
}

func (f *FM) Store() error {
	return f.s.record("fm.Store")
}

func (f *FM) Erase() error {
	return f.s.record("fm.Erase")
}

// Subwoofer simulates the SWAT library.
type Subwoofer struct {
	s *Sim
}

func (w *Subwoofer) StartInquiry() error {
	return w.s.record("swat.StartInquiry")
}

func (w *Subwoofer) DeletePairing() error {
	return w.s.record("swat.DeletePairing")
}

func (w *Subwoofer) OpenMedia() error {
	if err := w.s.record("swat.OpenMedia"); err != nil {
		return err
	}
	w.s.respond(events.SwatMediaOpenCfm, events.StatusInd{Status: events.StatusSuccess})
	return nil
}

func (w *Subwoofer) CloseMedia() error {
	if err := w.s.record("swat.CloseMedia"); err != nil {
		return err
	}
	w.s.respond(events.SwatMediaCloseCfm, events.StatusInd{Status: events.StatusSuccess})
	return nil
}

func (w *Subwoofer) SetVolume(level int) error {
	return w.s.record("swat.SetVolume", level)
}

func (w *Subwoofer) Disconnect() error {
	return w.s.record("swat.Disconnect")
}

// Display simulates the display plugin.
type Display struct {
	s *Sim
}

func (d *Display) Enable(on bool) error {
	return d.s.record("display.Enable", on)
}

func (d *Display) Show(text string) error {
	return d.s.record("display.Show", text)
}

// Power simulates the power supply.
type Power struct {
	s *Sim
}

func (p *Power) Shutdown() error {
	return p.s.record("power.Shutdown")
}
