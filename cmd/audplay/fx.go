// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ik5/audplay/effects"
)

// effectSpec builds one effect from its numeric parameters. Missing
// parameters take the defaults.
type effectSpec struct {
	defaults []float64
	build    func(p []float64) effects.Effect
}

var effectSpecs = map[string]effectSpec{
	"gain": {
		[]float64{effects.DefaultGain},
		func(p []float64) effects.Effect { return effects.NewGain(p[0]) },
	},
	"tremolo": {
		[]float64{effects.DefaultTremoloRate, effects.DefaultTremoloDepth},
		func(p []float64) effects.Effect { return effects.NewTremolo(p[0], p[1]) },
	},
	"ringmod": {
		[]float64{effects.DefaultRingModFrequency},
		func(p []float64) effects.Effect { return effects.NewRingModulator(p[0]) },
	},
	"bitcrush": {
		[]float64{effects.DefaultBitcrushNormFreq, effects.DefaultBitcrushBits},
		func(p []float64) effects.Effect { return effects.NewBitcrusher(p[0], int(p[1])) },
	},
	"softclip": {
		[]float64{effects.DefaultSoftClipFactor},
		func(p []float64) effects.Effect { return effects.NewSoftClipper(p[0]) },
	},
	"waveshaper": {
		[]float64{effects.DefaultWaveshaperThreshold},
		func(p []float64) effects.Effect { return effects.NewWaveshaper(p[0]) },
	},
	"tube": {
		[]float64{effects.DefaultTubeGain, effects.DefaultTubeMix},
		func(p []float64) effects.Effect { return effects.NewTubeDistortion(p[0], p[1]) },
	},
	"comb": {
		[]float64{effects.DefaultCombDelay, effects.DefaultCombGain},
		func(p []float64) effects.Effect { return effects.NewCombFilter(p[0], p[1]) },
	},
	"flanger": {
		[]float64{effects.DefaultFlangerRate, effects.DefaultFlangerDepth, effects.DefaultFlangerDelay},
		func(p []float64) effects.Effect { return effects.NewFlanger(p[0], p[1], p[2]) },
	},
	"eq": {
		[]float64{1000, 1, 0},
		func(p []float64) effects.Effect { return effects.NewPeakingEQ(p[0], p[1], p[2]) },
	},
}

// parseEffects reads a chain such as "gain=0.8,eq=1000:1:6,softclip".
// Parameters are separated by colons.
func parseEffects(list string) ([]effects.Effect, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}

	var chain []effects.Effect
	for _, item := range strings.Split(list, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(item), "=")

		es, ok := effectSpecs[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
		}

		p := append([]float64(nil), es.defaults...)
		if params != "" {
			fields := strings.Split(params, ":")
			if len(fields) > len(p) {
				return nil, fmt.Errorf("%w: %s takes at most %d", ErrEffectParams, name, len(p))
			}
			for i, f := range fields {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: %w", ErrEffectParams, name, err)
				}
				p[i] = v
			}
		}

		chain = append(chain, es.build(p))
	}

	return chain, nil
}
