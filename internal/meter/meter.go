// SPDX-License-Identifier: EPL-2.0

// Package meter turns bus traffic into periodic level readings.
package meter

import (
	"context"
	"math"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/bus"
)

// Floor is the quietest level reported, in dBFS.
const Floor = -96.0

// Level summarises a run of samples.
type Level struct {
	// RMS and Peak are in dBFS, never below Floor.
	RMS  float64
	Peak float64
	// Scaled maps RMS from -60..-10 dBFS onto 0..100, pinned to at least
	// 95 while clipping.
	Scaled   int
	Clipping bool
	Samples  int
}

// Reading is one report covering an interval.
type Reading struct {
	Pre     Level
	Post    Level
	Dropped uint64
}

type accumulator struct {
	sumSq    float64
	peak     float64
	clipping bool
	samples  int
}

func (a *accumulator) add(samples []int16) {
	for _, s := range samples {
		v := math.Abs(float64(s))
		a.sumSq += v * v
		a.peak = max(a.peak, v)
		if s == math.MaxInt16 || s == math.MinInt16 {
			a.clipping = true
		}
	}
	a.samples += len(samples)
}

func toDB(v float64) float64 {
	if v <= 0 {
		return Floor
	}

	return max(20*math.Log10(v/32768.0), Floor)
}

func (a *accumulator) level() Level {
	if a.samples == 0 {
		return Level{RMS: Floor, Peak: Floor}
	}

	rms := toDB(math.Sqrt(a.sumSq / float64(a.samples)))
	scaled := (rms + 60) * 2
	if a.clipping {
		scaled = max(scaled, 95)
	}

	return Level{
		RMS:      rms,
		Peak:     toDB(a.peak),
		Scaled:   int(min(max(scaled, 0), 100)),
		Clipping: a.clipping,
		Samples:  a.samples,
	}
}

// Measure computes the level of one block.
func Measure(samples []int16) Level {
	var a accumulator
	a.add(samples)

	return a.level()
}

// Meter collects pre and post filter levels from a bus subscription.
type Meter struct {
	interval time.Duration
	report   func(Reading)
}

// New creates a meter that calls report every interval with the levels
// seen since the previous call.
func New(interval time.Duration, report func(Reading)) *Meter {
	return &Meter{interval: interval, report: report}
}

// Run consumes sub until ctx is done or the subscription ends. Intervals
// without any blocks are not reported. The last partial interval is
// reported before Run returns.
func (m *Meter) Run(ctx context.Context, sub *bus.Subscription) error {
	tick := time.NewTicker(m.interval)
	defer tick.Stop()

	var (
		pre, post   accumulator
		lastDropped uint64
	)

	flush := func() {
		if pre.samples == 0 && post.samples == 0 {
			return
		}

		dropped := sub.Dropped()
		m.report(Reading{Pre: pre.level(), Post: post.level(), Dropped: dropped - lastDropped})
		lastDropped = dropped
		pre, post = accumulator{}, accumulator{}
	}

	for {
		select {
		case <-ctx.Done():
			flush()

			return ctx.Err()
		case <-tick.C:
			flush()
		case blk, ok := <-sub.C:
			if !ok {
				flush()

				return nil
			}

			switch blk.Kind {
			case audio.PreFilter:
				pre.add(blk.Samples)
			case audio.PostFilter:
				post.add(blk.Samples)
			}
		}
	}
}
