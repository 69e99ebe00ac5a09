package kiln

import "time"

// pid is a standard PID regulator with clamped output and integral
// anti-windup. dt is derived from the tick timestamps, so irregular tick
// spacing degrades gracefully instead of spiking the derivative term.
type pid struct {
	kp, ki, kd float64
	outMin     float64
	outMax     float64

	integral  float64
	lastError float64
	lastTime  time.Time
}

func newPID(params PIDParams, outMin, outMax float64) *pid {
	return &pid{
		kp:     params.Kp,
		ki:     params.Ki,
		kd:     params.Kd,
		outMin: outMin,
		outMax: outMax,
	}
}

// update advances the regulator one step and returns the clamped output.
func (p *pid) update(setpoint, measured float64, now time.Time) float64 {
	err := setpoint - measured

	var dt float64
	if !p.lastTime.IsZero() {
		dt = now.Sub(p.lastTime).Seconds()
	}

	proportional := p.kp * err

	var derivative float64
	if dt > 0 {
		p.integral += err * dt

		// Anti-windup: keep the integral contribution within the output
		// span so a long saturation does not have to unwind.
		if p.ki > 0 {
			limit := p.outMax / p.ki
			if p.integral > limit {
				p.integral = limit
			} else if p.integral < -limit {
				p.integral = -limit
			}
		}

		derivative = p.kd * (err - p.lastError) / dt
	}

	p.lastError = err
	p.lastTime = now

	out := proportional + p.ki*p.integral + derivative
	if out > p.outMax {
		out = p.outMax
	} else if out < p.outMin {
		out = p.outMin
	}
	return out
}

// reset clears accumulated state, e.g. after a setpoint discontinuity.
func (p *pid) reset() {
	p.integral = 0
	p.lastError = 0
	p.lastTime = time.Time{}
}
