// SPDX-License-Identifier: EPL-2.0

// Package bus distributes the sample blocks produced by the player to
// visualisers, meters and other consumers without ever blocking playback.
package bus
