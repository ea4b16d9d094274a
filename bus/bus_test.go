// SPDX-License-Identifier: EPL-2.0

package bus

import (
	"sync"
	"testing"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(kind audio.BlockKind, seq uint64) audio.SampleBlock {
	return audio.SampleBlock{
		Samples:    []int16{int16(seq)},
		SampleRate: 44100,
		Channels:   1,
		Kind:       kind,
		Sequence:   seq,
	}
}

func receive(t *testing.T, s *Subscription) audio.SampleBlock {
	t.Helper()

	select {
	case blk, ok := <-s.C:
		require.True(t, ok, "subscription closed")

		return blk
	case <-time.After(time.Second):
		require.FailNow(t, "timeout waiting for block")
	}

	return audio.SampleBlock{}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	t.Parallel()

	b := New()
	assert.Zero(t, b.Subscribers())

	s1 := b.Subscribe()
	s2 := b.Subscribe()
	assert.Equal(t, 2, b.Subscribers())

	s1.Unsubscribe()
	s1.Unsubscribe()
	assert.Equal(t, 1, b.Subscribers())

	_, ok := <-s1.C
	assert.False(t, ok, "C is closed after Unsubscribe")

	s2.Unsubscribe()
	assert.Zero(t, b.Subscribers())
}

func TestPublishDeliversInOrder(t *testing.T) {
	t.Parallel()

	b := New()
	subs := []*Subscription{b.Subscribe(), b.Subscribe(), b.Subscribe()}

	for i := range uint64(10) {
		b.Publish(block(audio.PreFilter, i))
	}

	for _, s := range subs {
		for i := range uint64(10) {
			assert.Equal(t, i, receive(t, s).Sequence)
		}
		assert.Zero(t, s.Dropped())
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	t.Parallel()

	b := New()
	assert.NotPanics(t, func() { b.Publish(block(audio.PostFilter, 0)) })
}

func TestPublishDropsWhenFull(t *testing.T) {
	t.Parallel()

	b := New()
	slow := b.Subscribe(WithBuffer(2))
	fast := b.Subscribe(WithBuffer(16))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range uint64(10) {
			b.Publish(block(audio.PreFilter, i))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "publish blocked on a full subscriber")
	}

	assert.Equal(t, uint64(8), slow.Dropped())
	assert.Zero(t, fast.Dropped())
	assert.Equal(t, uint64(0), receive(t, slow).Sequence)
	assert.Equal(t, uint64(1), receive(t, slow).Sequence)
}

func TestWithKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kinds []audio.BlockKind
		want  []audio.BlockKind
	}{
		{"all", nil, []audio.BlockKind{audio.PreFilter, audio.PostFilter}},
		{"pre only", []audio.BlockKind{audio.PreFilter}, []audio.BlockKind{audio.PreFilter}},
		{"post only", []audio.BlockKind{audio.PostFilter}, []audio.BlockKind{audio.PostFilter}},
		{"both", []audio.BlockKind{audio.PostFilter, audio.PreFilter}, []audio.BlockKind{audio.PreFilter, audio.PostFilter}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := New()
			s := b.Subscribe(WithKinds(tt.kinds...))
			b.Publish(block(audio.PreFilter, 0))
			b.Publish(block(audio.PostFilter, 0))
			s.Unsubscribe()

			var got []audio.BlockKind
			for blk := range s.C {
				got = append(got, blk.Kind)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubscribeFunc(t *testing.T) {
	t.Parallel()

	b := New()

	var (
		mu  sync.Mutex
		got []uint64
	)
	s := b.SubscribeFunc(func(blk audio.SampleBlock) {
		mu.Lock()
		got = append(got, blk.Sequence)
		mu.Unlock()
	})

	for i := range uint64(5) {
		b.Publish(block(audio.PostFilter, i))
	}
	s.Unsubscribe()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		require.FailNow(t, "callback goroutine did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, got)
}

func TestSubscribeFuncMayUnsubscribeItself(t *testing.T) {
	t.Parallel()

	b := New()

	var s *Subscription
	ready := make(chan struct{})
	s = b.SubscribeFunc(func(audio.SampleBlock) {
		<-ready
		s.Unsubscribe()
	})
	close(ready)

	b.Publish(block(audio.PreFilter, 0))

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		require.FailNow(t, "subscription did not stop")
	}
	assert.Zero(t, b.Subscribers())
}

func TestClose(t *testing.T) {
	t.Parallel()

	b := New()
	s := b.Subscribe()
	f := b.SubscribeFunc(func(audio.SampleBlock) {})

	b.Close()
	b.Close()

	_, ok := <-s.C
	assert.False(t, ok)
	<-f.Done()
	assert.Zero(t, b.Subscribers())

	late := b.Subscribe()
	_, ok = <-late.C
	assert.False(t, ok, "subscriptions on a closed bus start closed")
	assert.NotPanics(t, func() {
		b.Publish(block(audio.PreFilter, 1))
		late.Unsubscribe()
		s.Unsubscribe()
	})
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	t.Parallel()

	b := New(WithDefaultBuffer(4))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		var seq uint64
		for {
			select {
			case <-stop:
				return
			default:
				b.Publish(block(audio.PreFilter, seq))
				seq++
			}
		}
	}()

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				s := b.Subscribe()
				var last uint64
				first := true
				for range 3 {
					select {
					case blk, ok := <-s.C:
						if !ok {
							break
						}
						if !first {
							assert.Greater(t, blk.Sequence, last)
						}
						last, first = blk.Sequence, false
					case <-time.After(10 * time.Millisecond):
					}
				}
				s.Unsubscribe()
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(stop)
	wg.Wait()
}

func BenchmarkPublish(b *testing.B) {
	bs := New()
	for range 4 {
		s := bs.SubscribeFunc(func(audio.SampleBlock) {}, WithBuffer(1024))
		defer s.Unsubscribe()
	}

	blk := block(audio.PostFilter, 0)

	b.ReportAllocs()
	for b.Loop() {
		bs.Publish(blk)
	}
}
