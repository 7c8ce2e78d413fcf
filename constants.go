package game

import "time"

const (
	writeWait = 10 * time.Second

	// Collision rectangle drawn around a player's nominal position. The
	// client anchors sprites at the top-left corner, so the rectangle is
	// shifted to cover the sprite body.
	playerWidth   = 32.0
	playerHeight  = 32.0
	playerOffsetX = -16.0
	playerOffsetY = -16.0

	// edgeEpsilon keeps the ray-cast denominator non-zero on horizontal edges.
	edgeEpsilon = 1e-9

	// FinishMarker is the polygon name that signals level completion.
	FinishMarker = "finish"

	countdownTick = time.Second

	defaultStartDelay  = 10 * time.Second
	defaultDeleteDelay = 5 * time.Second
	defaultSweepPeriod = 30 * time.Second
)
