package run

import "math"

// Progress tracks the integer percentage of the horizon covered so far and
// reports only when it advances.
type Progress struct {
	start, end float64
	percent    int
}

func (p *Progress) Reset(start, end float64) {
	p.start = start
	p.end = end
	p.percent = 0
}

// PerformStep moves progress to t and reports whether the integer percentage
// increased.
func (p *Progress) PerformStep(t float64) bool {
	next := 100
	if p.end > p.start {
		next = int(math.Floor((t - p.start) / (p.end - p.start) * 100))
	}
	next = max(0, min(100, next))
	if next <= p.percent {
		return false
	}
	p.percent = next
	return true
}

func (p *Progress) Complete() { p.percent = 100 }

func (p *Progress) Percent() float64 { return float64(p.percent) }
