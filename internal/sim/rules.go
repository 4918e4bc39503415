package sim

// Rules bundle the anti-cheat validation bounds applied to staged commands.
type Rules struct {
	// AxisTolerance sits above the clamp bound to absorb float noise.
	AxisTolerance float32
	// MinDeltaTime and MaxDeltaTime bound the client-reported frame step.
	MinDeltaTime float32
	MaxDeltaTime float32
	// MinJumpStrength and MaxJumpStrength bound the requested impulse.
	MinJumpStrength float32
	MaxJumpStrength float32
	// JumpCooldownTicks is the minimum tick gap between accepted jumps.
	JumpCooldownTicks uint64
}

// DefaultRules returns the production validation bounds.
func DefaultRules() Rules {
	return Rules{
		AxisTolerance:     1.1,
		MinDeltaTime:      0.008,
		MaxDeltaTime:      0.1,
		MinJumpStrength:   5,
		MaxJumpStrength:   20,
		JumpCooldownTicks: 10,
	}
}

func (r Rules) normalized() Rules {
	defaults := DefaultRules()
	if r.AxisTolerance <= 0 {
		r.AxisTolerance = defaults.AxisTolerance
	}
	if r.MinDeltaTime <= 0 {
		r.MinDeltaTime = defaults.MinDeltaTime
	}
	if r.MaxDeltaTime <= r.MinDeltaTime {
		r.MaxDeltaTime = defaults.MaxDeltaTime
	}
	if r.MinJumpStrength <= 0 {
		r.MinJumpStrength = defaults.MinJumpStrength
	}
	if r.MaxJumpStrength <= r.MinJumpStrength {
		r.MaxJumpStrength = defaults.MaxJumpStrength
	}
	if r.JumpCooldownTicks == 0 {
		r.JumpCooldownTicks = defaults.JumpCooldownTicks
	}
	return r
}
