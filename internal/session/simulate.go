package session

import (
	"fmt"
	"math/rand"
	"time"
)

// The simulator stands in for a real telephony signaling feed. Both knobs
// are injectable so the feed can be swapped without touching the state
// machines.

// NumberFunc produces a synthetic caller number.
type NumberFunc func() string

// DelayFunc produces the wait before the next simulated inbound call.
type DelayFunc func() time.Duration

var usAreaCodes = []int{
	212, 213, 214, 215, 216, 305, 312, 323, 347, 404, 415, 469, 510,
	562, 602, 619, 626, 702, 714, 718, 760, 805, 818, 832, 917,
}

// USNumber generates a plausible US caller id, e.g. "+1 415-873-2201".
func USNumber() string {
	area := usAreaCodes[rand.Intn(len(usAreaCodes))]
	exchange := rand.Intn(900) + 100
	line := rand.Intn(9000) + 1000
	return fmt.Sprintf("+1 %d-%d-%d", area, exchange, line)
}

// UniformDelay returns a DelayFunc drawing uniformly from [min, max).
func UniformDelay(min, max time.Duration) DelayFunc {
	if max <= min {
		max = min + time.Second
	}
	return func() time.Duration {
		return min + time.Duration(rand.Int63n(int64(max-min)))
	}
}
