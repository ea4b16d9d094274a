// SPDX-License-Identifier: EPL-2.0

package main

import "errors"

var (
	ErrUsage         = errors.New("usage")
	ErrUnknownEffect = errors.New("unknown effect")
	ErrEffectParams  = errors.New("bad effect parameters")
)
