package voicegate

// speechBandMin is the minimum in-band energy fraction for a clip that
// opened the gate to count as speech rather than noise.
const speechBandMin = 0.35

// Analysis summarizes one clip. Decisions holds the gate state after
// each frame, in clip order, so clients can line activity up against
// their own timeline.
type Analysis struct {
	VoiceActive        bool    `json:"voice_active"`
	Bursts             int     `json:"bursts"`
	Frames             int     `json:"frames"`
	ActiveFrames       int     `json:"active_frames"`
	PeakRMS            float64 `json:"peak_rms"`
	NoiseFloor         float64 `json:"noise_floor"`
	SpeechBandFraction float64 `json:"speech_band_fraction"`
	Decisions          []bool  `json:"decisions"`
}

// Analyze runs a whole clip through a fresh gate, frame by frame, and
// cross-checks the energy verdict against the spectrum. A clip whose
// energy opened the gate but whose spectrum doesn't look like voice is
// reported inactive; claps and door slams carry most of their energy
// outside the speech band.
func Analyze(samples []float64, sampleRate, frameSize int, opts Options) Analysis {
	if frameSize <= 0 {
		frameSize = 480
	}
	gate := NewGate(opts)

	out := Analysis{Decisions: []bool{}}
	sawActive := false
	for start := 0; start+frameSize <= len(samples); start += frameSize {
		frame := samples[start : start+frameSize]
		result := gate.ProcessFrame(frame)
		out.Frames++
		out.Decisions = append(out.Decisions, result.Active)
		if result.Active {
			out.ActiveFrames++
			sawActive = true
		}
		if result.Burst {
			out.Bursts++
		}
		if result.RMS > out.PeakRMS {
			out.PeakRMS = result.RMS
		}
		out.NoiseFloor = result.NoiseFloor
	}

	out.SpeechBandFraction = SpeechBandFraction(samples, sampleRate)
	out.VoiceActive = sawActive && out.SpeechBandFraction >= speechBandMin
	return out
}
