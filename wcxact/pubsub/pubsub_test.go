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

package pubsub

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gamilr/webcam-direct-linux/wcxact/chunk"
	"github.com/gamilr/webcam-direct-linux/wcxact/wcxutil"
)

func recvChunk(t *testing.T, s *Subscriber) chunk.DataChunk {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	b, err := s.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}

	dc, err := chunk.DecodeChunk(b)
	if err != nil {
		t.Fatalf("DecodeChunk: %v", err)
	}
	return dc
}

func TestPublishNoSubscribers(t *testing.T) {
	p := NewPublisher(10, 4)
	if err := p.Publish([]byte("nobody listens")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestPublishFansOut(t *testing.T) {
	p := NewPublisher(4, 16)
	s1 := p.Subscribe()
	s2 := p.Subscribe()

	if p.NumSubscribers() != 2 {
		t.Fatalf("NumSubscribers = %d", p.NumSubscribers())
	}

	payload := []byte("0123456789")
	if err := p.Publish(payload); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	for _, s := range []*Subscriber{s1, s2} {
		var remains []int
		var joined []byte
		for {
			dc := recvChunk(t, s)
			remains = append(remains, dc.R)
			joined = append(joined, dc.D...)
			if dc.R == 0 {
				break
			}
		}

		if diff := cmp.Diff([]int{6, 2, 0}, remains); diff != "" {
			t.Fatalf("remain sequence (-want +got):\n%s", diff)
		}
		if !bytes.Equal(joined, payload) {
			t.Fatalf("got %q, want %q", joined, payload)
		}
	}
}

func TestSubscribeSeesOnlyLaterMessages(t *testing.T) {
	p := NewPublisher(100, 4)
	early := p.Subscribe()

	if err := p.Publish([]byte("first")); err != nil {
		t.Fatal(err)
	}

	late := p.Subscribe()
	if err := p.Publish([]byte("second")); err != nil {
		t.Fatal(err)
	}

	if dc := recvChunk(t, early); string(dc.D) != "first" {
		t.Fatalf("early got %q", dc.D)
	}
	if dc := recvChunk(t, early); string(dc.D) != "second" {
		t.Fatalf("early got %q", dc.D)
	}
	if dc := recvChunk(t, late); string(dc.D) != "second" {
		t.Fatalf("late got %q", dc.D)
	}
}

func TestPublishEmptyPayload(t *testing.T) {
	p := NewPublisher(10, 4)
	s := p.Subscribe()

	if err := p.Publish(nil); err != nil {
		t.Fatal(err)
	}

	dc := recvChunk(t, s)
	if dc.R != 0 || len(dc.D) != 0 {
		t.Fatalf("r=%d len=%d", dc.R, len(dc.D))
	}
}

func TestSlowSubscriberMisses(t *testing.T) {
	p := NewPublisher(100, 2)
	s := p.Subscribe()

	for i := 0; i < 5; i++ {
		if err := p.Publish([]byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}

	if s.Missed() != 3 {
		t.Fatalf("Missed = %d, want 3", s.Missed())
	}

	// The buffered envelopes are the oldest ones.
	if dc := recvChunk(t, s); !bytes.Equal(dc.D, []byte{0}) {
		t.Fatalf("got %v", dc.D)
	}
	if dc := recvChunk(t, s); !bytes.Equal(dc.D, []byte{1}) {
		t.Fatalf("got %v", dc.D)
	}
}

func TestSubscriberClose(t *testing.T) {
	p := NewPublisher(10, 4)
	s := p.Subscribe()

	s.Close()
	s.Close()

	if p.NumSubscribers() != 0 {
		t.Fatalf("NumSubscribers = %d", p.NumSubscribers())
	}
	if err := p.Publish([]byte("x")); err != nil {
		t.Fatal(err)
	}

	_, err := s.Recv(context.Background())
	if !wcxutil.IsSubscriberClosed(err) {
		t.Fatalf("expected closed error, got %v", err)
	}
}

func TestRecvContextDone(t *testing.T) {
	p := NewPublisher(10, 4)
	s := p.Subscribe()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Recv(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
