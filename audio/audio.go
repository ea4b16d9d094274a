// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"sync"
)

// Source is a pull-based stream of interleaved float32 samples.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder turns an encoded stream into blocks of interleaved 16-bit PCM.
//
// A Decoder belongs to one playback session. Open may be called again to
// start over with a new stream; all state from the previous stream is
// discarded.
type Decoder interface {
	// Open parses the stream headers. It fails with an error wrapping
	// ErrUnsupportedFormat when the stream is not something the decoder
	// understands.
	Open(r io.Reader) error
	// NextBlock returns the next block of whole frames. The slice is newly
	// allocated and owned by the caller.
	//
	// io.EOF marks the end of the stream. An error wrapping
	// ErrTransientDecode means this call produced nothing but the caller may
	// continue; ErrDecodeFatal means the stream cannot be read any further.
	NextBlock() ([]int16, error)
	SampleRate() int
	Channels() int
	// IsReady reports whether Open succeeded and the format is known.
	IsReady() bool
	// Position is the number of frames handed out so far.
	Position() int64
	// Close releases decoder state and closes the stream given to Open
	// when it is an io.Closer.
	Close() error
}

// NewDecoderFunc creates a fresh, unopened Decoder.
type NewDecoderFunc func() Decoder

// Registry maps file extensions (".wav", ".mp3") to decoder constructors.
type Registry struct {
	codecs map[string]NewDecoderFunc

	mtx *sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]NewDecoderFunc),
		mtx:    &sync.RWMutex{},
	}
}

// normalizeExt lower-cases ext and makes sure it starts with a dot.
func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return ext
}

// Register binds ext to fn, replacing any previous binding.
func (r *Registry) Register(ext string, fn NewDecoderFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[normalizeExt(ext)] = fn
}

func (r *Registry) Get(ext string) (NewDecoderFunc, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	fn, ok := r.codecs[normalizeExt(ext)]
	return fn, ok
}

// Formats lists the registered extensions in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	out := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		out = append(out, ext)
	}
	slices.Sort(out)

	return out
}

// ForPath picks a decoder by the extension of uri. Query strings and
// fragments are ignored.
func (r *Registry) ForPath(uri string) (Decoder, error) {
	p, _, _ := strings.Cut(uri, "?")
	p, _, _ = strings.Cut(p, "#")

	ext := path.Ext(p)
	if ext == "" {
		return nil, fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, uri)
	}

	fn, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, strings.ToLower(ext))
	}

	return fn(), nil
}
