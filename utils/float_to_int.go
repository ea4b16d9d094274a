// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// pcmScale maps the int16 range onto [-1, 1). Using a power of two keeps
// Int16ToFloat32 followed by Float32ToInt16 lossless.
const pcmScale = 32768.0

// Int16ToFloat32 converts a 16-bit PCM sample to a float in [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / pcmScale
}

// Float32ToInt16 converts a float sample to 16-bit PCM, rounding to the
// nearest step and clamping to [math.MinInt16, math.MaxInt16]. NaN maps to 0.
func Float32ToInt16(x float32) int16 {
	s := x * pcmScale
	switch {
	case s != s:
		return 0
	case s >= math.MaxInt16:
		return math.MaxInt16
	case s <= math.MinInt16:
		return math.MinInt16
	}

	return int16(math.Round(float64(s)))
}

// PCM16ToFloat32 converts src into dst and returns the number of samples
// written, which is min(len(dst), len(src)).
func PCM16ToFloat32(dst []float32, src []int16) int {
	n := min(len(dst), len(src))
	for i, v := range src[:n] {
		dst[i] = float32(v) / pcmScale
	}

	return n
}

// Float32ToPCM16 converts src into dst and returns the number of samples
// written, which is min(len(dst), len(src)).
func Float32ToPCM16(dst []int16, src []float32) int {
	n := min(len(dst), len(src))
	for i, x := range src[:n] {
		dst[i] = Float32ToInt16(x)
	}

	return n
}
