// SPDX-License-Identifier: EPL-2.0

/*
Package device defines the PCM output used by the player and provides
three backends:

  - Speaker plays through the system audio output using oto. The player
    writes into a blocking ring buffer and oto pulls from it, so a full
    buffer throttles decoding to real time.
  - WAVFile records the stream into a 16-bit WAV file.
  - Memory keeps (or discards) samples in memory and never blocks. It
    backs the null output and tests.
*/
package device
