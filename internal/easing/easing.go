// Package easing provides the fixed table of easing curves used by
// keyframe interpolation.
//
// Every curve maps a normalized progress t in [0,1] to an eased
// progress. Back, elastic and bounce curves overshoot for intermediate
// t, but all curves are pinned so that f(0) == 0 and f(1) == 1 exactly.
// The numeric ids are stable: they are what keyframe producers store.
package easing

import (
	"fmt"
	"math"
	"strings"
)

// ID identifies an easing curve in the table.
type ID uint8

const (
	Linear ID = iota
	InQuad
	OutQuad
	InOutQuad
	InCubic
	OutCubic
	InOutCubic
	InQuart
	OutQuart
	InOutQuart
	InQuint
	OutQuint
	InOutQuint
	InSine
	OutSine
	InOutSine
	InExpo
	OutExpo
	InOutExpo
	InCirc
	OutCirc
	InOutCirc
	InBack
	OutBack
	InOutBack
	InElastic
	OutElastic
	InOutElastic
	InBounce
	OutBounce
	InOutBounce

	// Count is the number of curves in the table.
	Count = int(InOutBounce) + 1
)

// Func is a single easing curve.
type Func func(t float64) float64

const (
	backC1    = 1.70158
	backC2    = backC1 * 1.525
	backC3    = backC1 + 1
	elasticC4 = (2 * math.Pi) / 3
	elasticC5 = (2 * math.Pi) / 4.5
	bounceN1  = 7.5625
	bounceD1  = 2.75
)

var table = [Count]Func{
	Linear: func(t float64) float64 { return t },

	InQuad:  func(t float64) float64 { return t * t },
	OutQuad: func(t float64) float64 { return 1 - (1-t)*(1-t) },
	InOutQuad: func(t float64) float64 {
		if t < 0.5 {
			return 2 * t * t
		}
		return 1 - math.Pow(-2*t+2, 2)/2
	},

	InCubic:  func(t float64) float64 { return t * t * t },
	OutCubic: func(t float64) float64 { return 1 - math.Pow(1-t, 3) },
	InOutCubic: func(t float64) float64 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2
	},

	InQuart:  func(t float64) float64 { return t * t * t * t },
	OutQuart: func(t float64) float64 { return 1 - math.Pow(1-t, 4) },
	InOutQuart: func(t float64) float64 {
		if t < 0.5 {
			return 8 * t * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 4)/2
	},

	InQuint:  func(t float64) float64 { return t * t * t * t * t },
	OutQuint: func(t float64) float64 { return 1 - math.Pow(1-t, 5) },
	InOutQuint: func(t float64) float64 {
		if t < 0.5 {
			return 16 * t * t * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 5)/2
	},

	InSine:    func(t float64) float64 { return 1 - math.Cos(t*math.Pi/2) },
	OutSine:   func(t float64) float64 { return math.Sin(t * math.Pi / 2) },
	InOutSine: func(t float64) float64 { return -(math.Cos(math.Pi*t) - 1) / 2 },

	InExpo:  func(t float64) float64 { return math.Pow(2, 10*t-10) },
	OutExpo: func(t float64) float64 { return 1 - math.Pow(2, -10*t) },
	InOutExpo: func(t float64) float64 {
		if t < 0.5 {
			return math.Pow(2, 20*t-10) / 2
		}
		return (2 - math.Pow(2, -20*t+10)) / 2
	},

	InCirc:  func(t float64) float64 { return 1 - math.Sqrt(1-t*t) },
	OutCirc: func(t float64) float64 { return math.Sqrt(1 - (t-1)*(t-1)) },
	InOutCirc: func(t float64) float64 {
		if t < 0.5 {
			return (1 - math.Sqrt(1-math.Pow(2*t, 2))) / 2
		}
		return (math.Sqrt(1-math.Pow(-2*t+2, 2)) + 1) / 2
	},

	InBack: func(t float64) float64 { return backC3*t*t*t - backC1*t*t },
	OutBack: func(t float64) float64 {
		return 1 + backC3*math.Pow(t-1, 3) + backC1*math.Pow(t-1, 2)
	},
	InOutBack: func(t float64) float64 {
		if t < 0.5 {
			return (math.Pow(2*t, 2) * ((backC2+1)*2*t - backC2)) / 2
		}
		return (math.Pow(2*t-2, 2)*((backC2+1)*(t*2-2)+backC2) + 2) / 2
	},

	InElastic: func(t float64) float64 {
		return -math.Pow(2, 10*t-10) * math.Sin((t*10-10.75)*elasticC4)
	},
	OutElastic: func(t float64) float64 {
		return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*elasticC4) + 1
	},
	InOutElastic: func(t float64) float64 {
		if t < 0.5 {
			return -(math.Pow(2, 20*t-10) * math.Sin((20*t-11.125)*elasticC5)) / 2
		}
		return (math.Pow(2, -20*t+10)*math.Sin((20*t-11.125)*elasticC5))/2 + 1
	},

	InBounce:  func(t float64) float64 { return 1 - outBounce(1-t) },
	OutBounce: outBounce,
	InOutBounce: func(t float64) float64 {
		if t < 0.5 {
			return (1 - outBounce(1-2*t)) / 2
		}
		return (1 + outBounce(2*t-1)) / 2
	},
}

func outBounce(t float64) float64 {
	switch {
	case t < 1/bounceD1:
		return bounceN1 * t * t
	case t < 2/bounceD1:
		t -= 1.5 / bounceD1
		return bounceN1*t*t + 0.75
	case t < 2.5/bounceD1:
		t -= 2.25 / bounceD1
		return bounceN1*t*t + 0.9375
	default:
		t -= 2.625 / bounceD1
		return bounceN1*t*t + 0.984375
	}
}

var names = [Count]string{
	"linear",
	"in-quad", "out-quad", "in-out-quad",
	"in-cubic", "out-cubic", "in-out-cubic",
	"in-quart", "out-quart", "in-out-quart",
	"in-quint", "out-quint", "in-out-quint",
	"in-sine", "out-sine", "in-out-sine",
	"in-expo", "out-expo", "in-out-expo",
	"in-circ", "out-circ", "in-out-circ",
	"in-back", "out-back", "in-out-back",
	"in-elastic", "out-elastic", "in-out-elastic",
	"in-bounce", "out-bounce", "in-out-bounce",
}

// Apply evaluates curve id at t. Ids outside the table fall back to
// Linear.
func Apply(id ID, t float64) float64 {
	switch t {
	case 0:
		return 0
	case 1:
		return 1
	}
	if int(id) >= Count {
		return t
	}
	return table[id](t)
}

// Get returns the pinned curve for id.
func Get(id ID) Func {
	return func(t float64) float64 { return Apply(id, t) }
}

// String returns the curve's kebab-case name.
func (id ID) String() string {
	if int(id) >= Count {
		return fmt.Sprintf("easing(%d)", uint8(id))
	}
	return names[id]
}

// Parse resolves a curve name such as "out-bounce". The empty string
// means Linear.
func Parse(name string) (ID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Linear, nil
	}
	for i, n := range names {
		if n == name {
			return ID(i), nil
		}
	}
	return Linear, fmt.Errorf("unknown easing function %q", name)
}
