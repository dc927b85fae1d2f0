package render

import "math"

// PackedDepth is a normalized depth sample packed into four bytes, most
// significant byte first. The all-ones pattern is reserved for pixels with
// no geometry behind them.
type PackedDepth [4]uint8

// Background is the packed value written where no geometry was hit.
var Background = PackedDepth{255, 255, 255, 255}

const packedMax = float64(1<<32 - 1)

// PackUnit packs a value in [0, 1) into four bytes. Values at or above 1
// pack to Background.
func PackUnit(v float64) PackedDepth {
	if v <= 0 {
		return PackedDepth{}
	}
	if v >= 1 {
		return Background
	}
	u := uint32(v * packedMax)
	return PackedDepth{uint8(u >> 24), uint8(u >> 16), uint8(u >> 8), uint8(u)}
}

// Unit unpacks the stored value back to [0, 1].
func (p PackedDepth) Unit() float64 {
	u := uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])
	return float64(u) / packedMax
}

// IsBackground reports whether the sample encodes "no geometry".
func (p PackedDepth) IsBackground() bool {
	return p == Background
}

// EncodeRange maps a linear ray distance to [0, 1) logarithmically,
// spending precision near the camera. far maps to 1.
func EncodeRange(d, far float64) float64 {
	if d <= 0 {
		return 0
	}
	if d >= far {
		return 1
	}
	return math.Log2(1+d) / math.Log2(1+far)
}

// DecodeRange inverts EncodeRange.
func DecodeRange(v, far float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Exp2(v*math.Log2(1+far)) - 1
}
