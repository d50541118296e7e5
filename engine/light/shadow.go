package light

// Depth projection limits of the shadow pass. The projection is fitted to the chart's bounding
// sphere and only clamped by these.
const (
	DefaultShadowNear float32 = 0.05
	DefaultShadowFar  float32 = 150

	// DefaultShadowBias offsets depth comparisons against self-shadowing.
	DefaultShadowBias float32 = 0.0015
)
