package voicegate

import "encoding/binary"

// DecodePCM16 converts little-endian signed 16-bit mono PCM into
// normalized float samples in [-1, 1). A trailing odd byte is dropped.
func DecodePCM16(data []byte) []float64 {
	n := len(data) / 2
	out := make([]float64, n)
	for i := range n {
		s := int16(binary.LittleEndian.Uint16(data[2*i:]))
		out[i] = float64(s) / 32768
	}
	return out
}
