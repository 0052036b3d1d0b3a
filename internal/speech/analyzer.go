package speech

import "math"

// epsilon is added before rounding so that values stored just below a
// half-cent round up.
const epsilon = 2.220446049250313e-16

// PeakAmplitude returns max(|s|) over samples. A silent clip reports 1 so
// that it can be used as a divisor.
func PeakAmplitude(samples []float32) float64 {
	peak := framePeak(samples)
	if peak == 0 {
		return 1
	}
	return peak
}

// LipLevel maps a frame peak onto [LipMin, LipMax] relative to the clip
// peak, rounded to two decimals. Frame peaks above the clip peak saturate.
func LipLevel(framePeak, clipPeak float64) float64 {
	if clipPeak <= 0 {
		clipPeak = 1
	}
	ratio := min(max(framePeak/clipPeak, 0), 1)
	v := LipMin + ratio*(LipMax-LipMin)
	return math.Floor((v+epsilon)*100+0.5) / 100
}

func framePeak(samples []float32) float64 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		peak = max(peak, s)
	}
	return float64(peak)
}
