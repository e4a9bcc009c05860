package domain

import "math"

// LevelCurve converts between cumulative XP and level with a power-law curve:
// xp(level) = XPBase * level^ExponentialFactor.
type LevelCurve struct {
	XPBase            float64
	ExponentialFactor float64
}

// LevelForXP returns floor((xp / XPBase)^(1/ExponentialFactor)), or 0 for xp <= 0.
// The result is not clamped to any maximum level.
func (c LevelCurve) LevelForXP(xp float64) int {
	if xp <= 0 || math.IsNaN(xp) || c.XPBase <= 0 || c.ExponentialFactor <= 0 {
		return 0
	}
	raw := math.Pow(xp/c.XPBase, 1/c.ExponentialFactor)
	if raw >= math.MaxInt32 {
		return math.MaxInt32
	}
	level := int(math.Floor(raw))

	// pow is not exact at level boundaries; settle against XPForLevel so the
	// round trip never overshoots and exact thresholds are not lost.
	for level > 0 && c.XPForLevel(level) > xp {
		level--
	}
	for level < math.MaxInt32 && c.XPForLevel(level+1) <= xp {
		level++
	}
	return level
}

// XPForLevel returns the cumulative XP at which level is reached.
func (c LevelCurve) XPForLevel(level int) float64 {
	if level <= 0 {
		return 0
	}
	return c.XPBase * math.Pow(float64(level), c.ExponentialFactor)
}

// XPToNextLevel returns the whole XP still missing to reach level+1.
func (c LevelCurve) XPToNextLevel(level int, xp float64) int {
	remaining := c.XPForLevel(level+1) - xp
	if remaining < 0 {
		return 0
	}
	return int(math.Floor(remaining))
}

// ProgressPct returns progress toward level+1 as a percentage (0.0–100.0).
func (c LevelCurve) ProgressPct(level int, xp float64) float64 {
	current := c.XPForLevel(level)
	next := c.XPForLevel(level + 1)
	span := next - current
	if span <= 0 {
		return 100.0
	}
	pct := (xp - current) / span * 100.0
	return math.Max(0, math.Min(100, pct))
}
