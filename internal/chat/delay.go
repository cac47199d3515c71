package chat

import (
	"math"
	"time"
)

const (
	minDelayMs   = 250
	maxDelayMs   = 2500
	floorBaseMs  = 300
	charsPerSec  = 30.0
	coachFactor  = 0.8
	listenFactor = 1.15
)

// ComputeDelay returns how long the typing indicator stays up before a reply
// of replyLen characters is revealed. Coaching answers come faster than
// listening ones. The result is always within [250ms, 2500ms].
func ComputeDelay(replyLen int, tone string) time.Duration {
	if replyLen < 0 {
		replyLen = 0
	}
	base := math.Max(floorBaseMs, math.Round(float64(replyLen)/charsPerSec*1000))

	factor := listenFactor
	if tone == ToneCoaching {
		factor = coachFactor
	}

	ms := math.Round(base * factor)
	ms = math.Min(maxDelayMs, math.Max(minDelayMs, ms))
	return time.Duration(ms) * time.Millisecond
}

// Scheduler runs f once after d. Tests substitute a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// RealScheduler is backed by time.AfterFunc.
var RealScheduler Scheduler = timerScheduler{}
