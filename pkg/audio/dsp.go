package audio

import "math"

// hannWindow The usual raised-cosine analysis window
func hannWindow(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return w
}

func rootMeanSquare(frame []float64) float64 {
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// magnitudeSpectrum The first half of the FFT magnitude of the frame.
// The frame length must be a power of two
func magnitudeSpectrum(frame []float64) []float64 {
	n := len(frame)
	re := append([]float64(nil), frame...)
	im := make([]float64, n)
	fft(re, im)

	mag := make([]float64, n/2)
	for i := range mag {
		mag[i] = math.Hypot(re[i], im[i])
	}
	return mag
}

// fft In-place iterative radix-2 Cooley-Tukey transform
func fft(re, im []float64) {
	n := len(re)
	// Bit-reversal permutation
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}
	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wRe, wIm := math.Cos(angle), math.Sin(angle)
		for start := 0; start < n; start += length {
			curRe, curIm := 1.0, 0.0
			for k := 0; k < length/2; k++ {
				i, j := start+k, start+k+length/2
				tRe := re[j]*curRe - im[j]*curIm
				tIm := re[j]*curIm + im[j]*curRe
				re[j], im[j] = re[i]-tRe, im[i]-tIm
				re[i], im[i] = re[i]+tRe, im[i]+tIm
				curRe, curIm = curRe*wRe-curIm*wIm, curRe*wIm+curIm*wRe
			}
		}
	}
}

// spectralCentroid The magnitude-weighted mean frequency of the spectrum
func spectralCentroid(mag []float64, binHz float64) float64 {
	var weighted, total float64
	for i, m := range mag {
		weighted += float64(i) * binHz * m
		total += m
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// spectralFlux The summed positive magnitude increase since the previous
// frame, a cheap but effective onset strength estimate
func spectralFlux(mag, prev []float64) float64 {
	if prev == nil {
		return 0
	}
	var flux float64
	for i, m := range mag {
		if d := m - prev[i]; d > 0 {
			flux += d
		}
	}
	return flux
}

// bandEnergy The summed magnitude of all bins inside the band
func bandEnergy(mag []float64, binHz float64, band Band) float64 {
	var sum float64
	for i, m := range mag {
		freq := float64(i) * binHz
		if freq >= band.Low && freq < band.Hi {
			sum += m
		}
	}
	return sum
}

// normalizeJointly Scale a series into [0, 1] by the peak across a whole
// group of series sharing the same unit
func normalizeJointly(series []float64, group [][]float64) []float64 {
	var max float64
	for _, s := range group {
		for _, v := range s {
			if v > max {
				max = v
			}
		}
	}
	if max == 0 {
		return series
	}
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = v / max
	}
	return out
}

// normalize Scale a series into [0, 1] by its peak. An all-zero series is
// returned untouched
func normalize(series []float64) []float64 {
	var max float64
	for _, v := range series {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return series
	}
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = v / max
	}
	return out
}
