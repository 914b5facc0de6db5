// Package utils holds shared test helpers for generating synthetic audio
// signals and inspecting analysis output.
package utils

import "math"

// GenerateSineWave returns a pure sine wave of the given frequency as an
// int32 PCM buffer at ~90% full scale.
func GenerateSineWave(size int, sampleRate, frequency float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = int32(math.Sin(2*math.Pi*frequency*t) * math.MaxInt32 * 0.9)
	}
	return buffer
}

// GenerateComplexWave returns a 440Hz fundamental with two harmonics,
// useful for exercising the analyser with a non-trivial spectrum.
func GenerateComplexWave(size int, sampleRate float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = int32(signal * math.MaxInt32 * 0.9)
	}
	return buffer
}

// PeakByteBin returns the index of the largest value in a byte spectrum,
// restricted to [startBin, endBin].
func PeakByteBin(spectrum []byte, startBin, endBin int) int {
	if len(spectrum) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(spectrum) {
		endBin = len(spectrum) - 1
	}

	peakBin := startBin
	peakValue := spectrum[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if spectrum[bin] > peakValue {
			peakValue = spectrum[bin]
			peakBin = bin
		}
	}
	return peakBin
}
