package state

// Volume is a linear gain factor applied to decoded samples before they reach
// Output. 1.0 is unity gain; 0.0 is silence. Values above 1.0 amplify and are
// allowed up to VolumeMax, matching the original engine's headroom allowance
// for quiet sources.
type Volume float64

const (
	VolumeMin   Volume = 0.0
	VolumeUnity Volume = 1.0
	VolumeMax   Volume = 2.0
)

// NewVolume clamps v into [VolumeMin, VolumeMax]. NaN is treated as VolumeMin.
func NewVolume(v float64) Volume {
	return Volume(v).Clamp()
}

// Clamp returns v restricted to the valid volume range.
func (v Volume) Clamp() Volume {
	f := float64(v)
	if f != f { // NaN
		return VolumeMin
	}
	if f < float64(VolumeMin) {
		return VolumeMin
	}
	if f > float64(VolumeMax) {
		return VolumeMax
	}
	return v
}

// F64 returns the gain as a plain float64 for use in sample multiplication.
func (v Volume) F64() float64 {
	return float64(v)
}

// Add returns v + delta, saturating at the volume bounds rather than
// wrapping or overflowing.
func (v Volume) Add(delta float64) Volume {
	return NewVolume(float64(v) + delta)
}
