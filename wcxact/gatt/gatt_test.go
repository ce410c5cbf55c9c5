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

package gatt

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/gamilr/webcam-direct-linux/wcxact/bledefs"
	"github.com/gamilr/webcam-direct-linux/wcxact/chunk"
	"github.com/gamilr/webcam-direct-linux/wcxact/mobile"
	"github.com/gamilr/webcam-direct-linux/wcxact/server"
)

type fakeLink struct {
	ch chan struct{}
}

func (l *fakeLink) Disconnected() <-chan struct{} {
	return l.ch
}

type fakeNotifier struct {
	ctx    context.Context
	mtx    sync.Mutex
	writes [][]byte
	wrote  chan struct{}
}

func (n *fakeNotifier) Context() context.Context {
	return n.ctx
}

func (n *fakeNotifier) Write(b []byte) (int, error) {
	n.mtx.Lock()
	n.writes = append(n.writes, b)
	n.mtx.Unlock()

	n.wrote <- struct{}{}
	return len(b), nil
}

func TestConnTrackerReportsOnce(t *testing.T) {
	gone := make(chan BleAddr, 4)
	ct := NewConnTracker(func(addr BleAddr) { gone <- addr })

	link := &fakeLink{ch: make(chan struct{})}
	ct.Track("AA:AA:AA:AA:AA:AA", link)
	ct.Track("AA:AA:AA:AA:AA:AA", link)

	if ct.NumConns() != 1 {
		t.Fatalf("NumConns = %d", ct.NumConns())
	}

	close(link.ch)
	ct.Wait()

	if len(gone) != 1 {
		t.Fatalf("peer reported %d times", len(gone))
	}
	if addr := <-gone; addr != "AA:AA:AA:AA:AA:AA" {
		t.Fatalf("reported %s", addr)
	}
	if ct.NumConns() != 0 {
		t.Fatalf("NumConns = %d", ct.NumConns())
	}
}

func newTestRequester(t *testing.T) (server.Requester, *mobile.MemStore) {
	t.Helper()

	store := mobile.NewMemStore(mobile.HostProvInfo{
		Id:             "E0A6D8C2-7E1F-4A49-9F5B-2C0B6B2E8E11",
		Name:           "test-host",
		ConnectionType: mobile.CONN_TYPE_WLAN,
	})

	s, err := server.NewServer(mobile.NewMobileComm(store,
		mobile.EchoBuilder{}), server.NewServerCfg())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(s.Stop)

	return s.Requester(), store
}

func TestCharacteristicReadWrite(t *testing.T) {
	req, store := newTestRequester(t)

	h := &chrHandler{
		req:   req,
		cfg:   NewSvcCfg(),
		query: QUERY_HOST_INFO,
		cmd:   CMD_REGISTER_MOBILE,
	}
	addr := BleAddr("11:22:33:44:55:66")

	var joined []byte
	for {
		b, err := h.read(addr, 23)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(b) > 23 {
			t.Fatalf("response of %d bytes exceeds MTU", len(b))
		}

		dc, err := chunk.DecodeChunk(b)
		if err != nil {
			t.Fatal(err)
		}
		joined = append(joined, dc.D...)
		if dc.R == 0 {
			break
		}
	}

	var host mobile.HostProvInfo
	if err := mobile.DecodeMsg(joined, &host); err != nil {
		t.Fatal(err)
	}
	if host.Name != "test-host" {
		t.Fatalf("host name %q", host.Name)
	}

	msg, err := mobile.EncodeMsg(mobile.MobileSchema{Id: "m1", Name: "Pixel"})
	if err != nil {
		t.Fatal(err)
	}
	for _, dc := range chunk.Fragment(msg, 8) {
		b, err := chunk.EncodeChunk(dc)
		if err != nil {
			t.Fatal(err)
		}
		if err := h.write(addr, b); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	if _, err := store.Mobile("m1"); err != nil {
		t.Fatalf("mobile not registered: %v", err)
	}
}

func TestCharacteristicForward(t *testing.T) {
	req, _ := newTestRequester(t)

	h := &chrHandler{
		req:    req,
		cfg:    NewSvcCfg(),
		topic:  TOPIC_SDP_ANSWER_READY,
		notify: true,
	}
	addr := BleAddr("11:22:33:44:55:66")

	ctx, cancel := context.WithCancel(context.Background())
	n := &fakeNotifier{ctx: ctx, wrote: make(chan struct{}, 8)}

	done := make(chan error, 1)
	go func() {
		done <- h.forward(addr, 64, n)
	}()

	// Publishing fails until the subscription lands.
	deadline := time.Now().Add(5 * time.Second)
	for {
		err := req.Publish(context.Background(), addr,
			TOPIC_SDP_ANSWER_READY, []byte("ready"))
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Publish: %v", err)
		}
		time.Sleep(time.Millisecond)
	}

	select {
	case <-n.wrote:
	case <-time.After(5 * time.Second):
		t.Fatal("no notification forwarded")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("forward: %v", err)
	}

	n.mtx.Lock()
	defer n.mtx.Unlock()

	dc, err := chunk.DecodeChunk(n.writes[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(dc.D) != "ready" || dc.R != 0 {
		t.Fatalf("got r=%d d=%q", dc.R, dc.D)
	}
}
