package audio

import "math"

// Windowed-sinc resampling parameters. These mirror exactly the
// SincInterpolationParameters used by the reference implementation this
// module's behavior was distilled from: sinc length 256, oversampling
// factor 256, cutoff 0.95 of Nyquist, a Blackman-Harris window, and linear
// interpolation between adjacent oversampled taps. No resampling library in
// the surrounding ecosystem reproduces this exact contract, so it is
// implemented directly against math.
const (
	sincLength        = 256
	oversamplingFactor = 256
	cutoffRatio        = 0.95
)

// Resample converts samples from sourceRate to targetRate using a
// windowed-sinc filter. It returns samples unchanged if the rates match.
func Resample(samples []float32, sourceRate, targetRate int) []float32 {
	if sourceRate == targetRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(targetRate) / float64(sourceRate)
	outLen := int(math.Ceil(float64(len(samples)) * ratio))
	out := make([]float32, outLen)

	table := buildSincTable()

	// cutoff applies to the lower of the two rates, to avoid aliasing when
	// downsampling and to avoid introducing spurious high-frequency content
	// when upsampling.
	scale := ratio
	if scale > 1.0 {
		scale = 1.0
	}

	for i := 0; i < outLen; i++ {
		srcPos := float64(i) / ratio
		out[i] = sincInterpolate(samples, srcPos, scale, table)
	}

	return out
}

// sincTable holds the oversampled, windowed sinc kernel for one side of the
// filter (index 0 is the center tap).
type sincTable struct {
	values []float64
}

func buildSincTable() sincTable {
	n := sincLength * oversamplingFactor
	values := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		x := float64(i) / float64(oversamplingFactor)
		values[i] = sinc(x*cutoffRatio) * cutoffRatio * blackmanHarris(x, sincLength)
	}
	return sincTable{values: values}
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1.0
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// blackmanHarris evaluates the 4-term Blackman-Harris window at offset x
// (in taps from the center) over a kernel half-width of halfWidth taps.
func blackmanHarris(x, halfWidth float64) float64 {
	if math.Abs(x) >= halfWidth {
		return 0
	}
	const (
		a0 = 0.35875
		a1 = 0.48829
		a2 = 0.14128
		a3 = 0.01168
	)
	// Map x in [-halfWidth, halfWidth] to phase in [0, 2*pi].
	phase := math.Pi * (x/halfWidth + 1.0)
	return a0 - a1*math.Cos(phase) + a2*math.Cos(2*phase) - a3*math.Cos(3*phase)
}

// lookup returns the windowed sinc value at fractional tap offset t (t >= 0)
// by linear interpolation between adjacent oversampled table entries.
func (tbl sincTable) lookup(t float64) float64 {
	if t < 0 {
		t = -t
	}
	pos := t * oversamplingFactor
	idx := int(pos)
	if idx >= len(tbl.values)-1 {
		return 0
	}
	frac := pos - float64(idx)
	return tbl.values[idx]*(1-frac) + tbl.values[idx+1]*frac
}

// sincInterpolate evaluates the resampled signal at fractional source
// position srcPos, summing contributions from every input sample within
// sincLength/scale taps on either side.
func sincInterpolate(samples []float32, srcPos, scale float64, table sincTable) float32 {
	halfWidth := float64(sincLength) / scale
	left := int(math.Floor(srcPos - halfWidth))
	right := int(math.Ceil(srcPos + halfWidth))

	if left < 0 {
		left = 0
	}
	if right >= len(samples) {
		right = len(samples) - 1
	}

	var sum float64
	for j := left; j <= right; j++ {
		tapOffset := (srcPos - float64(j)) * scale
		weight := table.lookup(tapOffset)
		if weight == 0 {
			continue
		}
		sum += float64(samples[j]) * weight
	}

	// The kernel is stretched by 1/scale when downsampling, so its taps sum
	// to roughly 1/scale; multiplying by scale keeps unity gain.
	return float32(sum * scale)
}
