package gamepad

// scaleAxis maps value from [lo, hi] onto [-1, 1].
func scaleAxis(value, lo, hi int32) float32 {
	if hi <= lo {
		return 0
	}
	span := float64(hi) - float64(lo)
	v := (float64(value)-float64(lo))/span*2 - 1
	return clampUnit(float32(v))
}
