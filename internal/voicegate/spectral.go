package voicegate

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Speech band bounds in Hz. Energy concentrated here distinguishes a
// voice from broadband noise and percussive hits.
const (
	speechBandLow  = 300.0
	speechBandHigh = 3400.0
)

// SpeechBandFraction returns the fraction of spectral energy that falls
// in the 300-3400 Hz band. Returns 0 for empty or silent input.
func SpeechBandFraction(samples []float64, sampleRate int) float64 {
	if len(samples) < 2 || sampleRate <= 0 {
		return 0
	}

	spectrum := fft.FFTReal(samples)

	binWidth := float64(sampleRate) / float64(len(samples))
	var total, band float64
	// Only the first half of the spectrum is meaningful for real input;
	// skip the DC bin.
	for i := 1; i < len(spectrum)/2; i++ {
		power := cmplx.Abs(spectrum[i])
		power *= power
		total += power
		freq := float64(i) * binWidth
		if freq >= speechBandLow && freq <= speechBandHigh {
			band += power
		}
	}
	if total == 0 {
		return 0
	}
	return band / total
}
