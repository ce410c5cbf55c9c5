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
	"sync"

	log "github.com/sirupsen/logrus"

	. "github.com/gamilr/webcam-direct-linux/wcxact/bledefs"
)

type linkWatcher interface {
	Disconnected() <-chan struct{}
}

// Watches each peer's link and reports it once when it drops.
type ConnTracker struct {
	onGone func(addr BleAddr)

	conns map[BleAddr]struct{}
	mtx   sync.Mutex
	wg    sync.WaitGroup
}

func NewConnTracker(onGone func(addr BleAddr)) *ConnTracker {
	return &ConnTracker{
		onGone: onGone,
		conns:  map[BleAddr]struct{}{},
	}
}

// Starts watching the link if it is not watched already.
func (ct *ConnTracker) Track(addr BleAddr, lw linkWatcher) {
	ct.mtx.Lock()
	defer ct.mtx.Unlock()

	if _, ok := ct.conns[addr]; ok {
		return
	}
	ct.conns[addr] = struct{}{}

	log.Debugf("tracking connection to %s", addr)

	ct.wg.Add(1)
	go func() {
		defer ct.wg.Done()

		<-lw.Disconnected()

		ct.mtx.Lock()
		delete(ct.conns, addr)
		ct.mtx.Unlock()

		log.Infof("peer %s disconnected", addr)
		ct.onGone(addr)
	}()
}

func (ct *ConnTracker) NumConns() int {
	ct.mtx.Lock()
	defer ct.mtx.Unlock()

	return len(ct.conns)
}

// Blocks until every tracked link has dropped and been reported.
func (ct *ConnTracker) Wait() {
	ct.wg.Wait()
}
