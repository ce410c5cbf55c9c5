/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Best-effort fan-out of chunked notifications.  A publisher splits each
// payload into encoded envelopes and offers every envelope to each current
// subscriber.  Delivery is at-most-once: a subscriber whose buffer is full
// misses the envelope.
package pubsub

import (
	"context"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/gamilr/webcam-direct-linux/wcxact/chunk"
	"github.com/gamilr/webcam-direct-linux/wcxact/wcxutil"
)

type Publisher struct {
	fragLen int
	depth   int

	subs []*Subscriber
	mtx  sync.Mutex
}

type Subscriber struct {
	// Accessed atomically; first for 64-bit alignment.
	missed uint64

	pub    *Publisher
	ch     chan []byte
	stopCh chan struct{}
	once   sync.Once
}

// fragLen is the payload size of each fragment, excluding envelope overhead.
// depth bounds each subscriber's backlog.
func NewPublisher(fragLen int, depth int) *Publisher {
	wcxutil.Assert(fragLen > 0)

	if depth <= 0 {
		depth = 1
	}

	return &Publisher{
		fragLen: fragLen,
		depth:   depth,
	}
}

func (p *Publisher) FragLen() int {
	return p.fragLen
}

func (p *Publisher) NumSubscribers() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return len(p.subs)
}

// Returns a subscriber that observes only envelopes published after this call.
func (p *Publisher) Subscribe() *Subscriber {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	s := &Subscriber{
		pub:    p,
		ch:     make(chan []byte, p.depth),
		stopCh: make(chan struct{}),
	}
	p.subs = append(p.subs, s)

	return s
}

func (p *Publisher) remove(s *Subscriber) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	for i, cur := range p.subs {
		if cur == s {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			return
		}
	}
}

// Fragments payload and sends each envelope, in order, to all current
// subscribers.  Publishing with no subscribers succeeds.
func (p *Publisher) Publish(payload []byte) error {
	frags := chunk.Fragment(payload, p.fragLen)

	encoded := make([][]byte, len(frags))
	for i, dc := range frags {
		b, err := chunk.EncodeChunk(dc)
		if err != nil {
			return err
		}
		encoded[i] = b
	}

	p.mtx.Lock()
	subs := make([]*Subscriber, len(p.subs))
	copy(subs, p.subs)
	p.mtx.Unlock()

	for _, s := range subs {
		for _, b := range encoded {
			s.offer(b)
		}
	}

	log.Debugf("published %d bytes in %d fragments to %d subscribers",
		len(payload), len(encoded), len(subs))

	return nil
}

func (s *Subscriber) offer(b []byte) {
	select {
	case <-s.stopCh:
	case s.ch <- b:
	default:
		n := atomic.AddUint64(&s.missed, 1)
		log.Debugf("subscriber buffer full; dropped fragment (missed=%d)", n)
	}
}

// Blocks until the next envelope arrives, the context is done, or the
// subscriber is closed.
func (s *Subscriber) Recv(ctx context.Context) ([]byte, error) {
	select {
	case b := <-s.ch:
		return b, nil
	default:
	}

	select {
	case b := <-s.ch:
		return b, nil
	case <-s.stopCh:
		return nil, wcxutil.NewSubscriberClosedError()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Number of envelopes dropped because this subscriber's buffer was full.
func (s *Subscriber) Missed() uint64 {
	return atomic.LoadUint64(&s.missed)
}

// Detaches the subscriber from its publisher.  Safe to call more than once.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		s.pub.remove(s)
		close(s.stopCh)
	})
}
