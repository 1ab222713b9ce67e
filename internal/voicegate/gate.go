// Package voicegate implements energy-based voice activity detection
// with hysteresis, so the teleprompter doesn't flap between scrolling
// and paused on every breath.
package voicegate

import "math"

// Options tune the gate.
type Options struct {
	// AttackFrames is how many consecutive loud frames open the gate.
	AttackFrames int
	// ReleaseFrames is how many consecutive quiet frames close it.
	ReleaseFrames int
	// OpenRatio is how far above the noise floor a frame must be to
	// count as loud.
	OpenRatio float64
	// BurstRatio is the spike level that marks a percussive burst
	// (clap, knock) rather than speech.
	BurstRatio float64
	// FloorAlpha is the exponential smoothing factor for the adaptive
	// noise floor, updated only while the gate is closed.
	FloorAlpha float64
	// InitialFloor seeds the noise floor before any quiet audio has
	// been observed.
	InitialFloor float64
}

// DefaultOptions match frame sizes around 20-30ms.
func DefaultOptions() Options {
	return Options{
		AttackFrames:  3,
		ReleaseFrames: 12,
		OpenRatio:     2.5,
		BurstRatio:    6.0,
		FloorAlpha:    0.95,
		InitialFloor:  0.01,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.AttackFrames <= 0 {
		o.AttackFrames = d.AttackFrames
	}
	if o.ReleaseFrames <= 0 {
		o.ReleaseFrames = d.ReleaseFrames
	}
	if o.OpenRatio <= 1 {
		o.OpenRatio = d.OpenRatio
	}
	if o.BurstRatio <= o.OpenRatio {
		o.BurstRatio = d.BurstRatio
	}
	if o.FloorAlpha <= 0 || o.FloorAlpha >= 1 {
		o.FloorAlpha = d.FloorAlpha
	}
	if o.InitialFloor <= 0 {
		o.InitialFloor = d.InitialFloor
	}
	return o
}

// FrameResult describes one processed frame.
type FrameResult struct {
	RMS        float64
	Active     bool
	Burst      bool
	NoiseFloor float64
}

// Gate is the hysteresis state machine. Not safe for concurrent use;
// each audio stream gets its own Gate.
type Gate struct {
	opts       Options
	active     bool
	loudStreak int
	quietRun   int
	sawSpike   bool
	floor      float64
}

func NewGate(opts Options) *Gate {
	opts = opts.withDefaults()
	return &Gate{opts: opts, floor: opts.InitialFloor}
}

// Active reports the current gate state.
func (g *Gate) Active() bool { return g.active }

// ProcessFrame feeds one frame of PCM samples (any amplitude scale)
// through the gate.
func (g *Gate) ProcessFrame(samples []float64) FrameResult {
	rms := RMS(samples)
	loud := rms > g.floor*g.opts.OpenRatio

	burst := false
	if loud {
		g.quietRun = 0
		g.loudStreak++
		if !g.active && rms > g.floor*g.opts.BurstRatio {
			g.sawSpike = true
		}
		if !g.active && g.loudStreak >= g.opts.AttackFrames {
			g.active = true
			g.sawSpike = false
		}
	} else {
		// A spike that never sustained long enough to open the gate is
		// a burst (clap, knock), not speech.
		if !g.active && g.sawSpike && g.loudStreak > 0 && g.loudStreak < g.opts.AttackFrames {
			burst = true
		}
		g.sawSpike = false
		g.loudStreak = 0
		g.quietRun++
		if g.active && g.quietRun >= g.opts.ReleaseFrames {
			g.active = false
		}
		// The floor adapts only to non-speech audio.
		if !g.active {
			g.floor = g.opts.FloorAlpha*g.floor + (1-g.opts.FloorAlpha)*rms
			if g.floor < g.opts.InitialFloor/100 {
				g.floor = g.opts.InitialFloor / 100
			}
		}
	}

	return FrameResult{RMS: rms, Active: g.active, Burst: burst, NoiseFloor: g.floor}
}

// RMS is the root mean square amplitude of a frame.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}
