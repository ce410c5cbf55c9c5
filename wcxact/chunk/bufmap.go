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

package chunk

import (
	log "github.com/sirupsen/logrus"

	. "github.com/gamilr/webcam-direct-linux/wcxact/bledefs"
	"github.com/gamilr/webcam-direct-linux/wcxact/wcxutil"
)

// Chunking progress for one peer.  Reads track the bytes still to be sent;
// writes accumulate the bytes received so far.
type cursors struct {
	reader map[QueryKind]int
	writer map[CmdKind][]byte
}

func (c *cursors) empty() bool {
	return len(c.reader) == 0 && len(c.writer) == 0
}

// Fragments outgoing messages and reassembles incoming ones, per peer and per
// message kind.  Only one transaction per (peer, kind) may be in progress; a
// second request for the same pair continues the existing cursor.
//
// Not thread safe.  The session server is the only owner.
type BufferMap struct {
	peers     map[BleAddr]*cursors
	overhead  int
	maxMsgLen int
}

func NewBufferMap(overhead int, maxMsgLen int) *BufferMap {
	log.Debugf("chunk overhead=%d max_msg_len=%d", overhead, maxMsgLen)

	return &BufferMap{
		peers:     map[BleAddr]*cursors{},
		overhead:  overhead,
		maxMsgLen: maxMsgLen,
	}
}

func (bm *BufferMap) Overhead() int {
	return bm.overhead
}

func (bm *BufferMap) MaxMsgLen() int {
	return bm.maxMsgLen
}

func (bm *BufferMap) getCursors(addr BleAddr) *cursors {
	c := bm.peers[addr]
	if c == nil {
		c = &cursors{
			reader: map[QueryKind]int{},
			writer: map[CmdKind][]byte{},
		}
		bm.peers[addr] = c
	}

	return c
}

// Drops the peer entry once its last cursor is gone.
func (bm *BufferMap) prune(addr BleAddr) {
	if c := bm.peers[addr]; c != nil && c.empty() {
		delete(bm.peers, addr)
	}
}

// Indicates whether any transaction is in progress for the peer.
func (bm *BufferMap) HasPeer(addr BleAddr) bool {
	_, ok := bm.peers[addr]
	return ok
}

// Indicates whether a read of the given kind is streaming to the peer.
func (bm *BufferMap) ReadActive(addr BleAddr, kind QueryKind) bool {
	c := bm.peers[addr]
	if c == nil {
		return false
	}

	_, ok := c.reader[kind]
	return ok
}

// Produces the next fragment of msg for the peer.  The first call for a
// (peer, kind) pair starts a transaction; the call that returns R == 0 ends
// it.  maxFragLen is the caller's budget for the encoded envelope and may
// change from one call to the next.
func (bm *BufferMap) NextChunk(addr BleAddr, kind QueryKind, maxFragLen int,
	msg []byte) (DataChunk, error) {

	budget := maxFragLen - bm.overhead
	if budget <= 0 {
		return DataChunk{}, wcxutil.NewFragBudgetError(maxFragLen, bm.overhead)
	}

	c := bm.getCursors(addr)

	remain, ok := c.reader[kind]
	if !ok {
		remain = len(msg)
	} else if remain > len(msg) {
		// The source value shrank under an active transfer; the cursor no
		// longer describes it.
		log.Warnf("read cursor for %s/%s exceeds message length (%d > %d); "+
			"restarting transfer", addr, kind, remain, len(msg))
		remain = len(msg)
	}

	start := len(msg) - remain

	fragLen := budget
	if fragLen > remain {
		fragLen = remain
	}
	remain -= fragLen

	dc := DataChunk{
		R: remain,
		D: msg[start : start+fragLen],
	}

	if remain == 0 || maxFragLen > bm.maxMsgLen {
		if remain != 0 {
			log.Warnf("fragment budget %d exceeds max message length %d; "+
				"aborting read of %s for %s", maxFragLen, bm.maxMsgLen,
				kind, addr)
		}

		delete(c.reader, kind)
		bm.prune(addr)
	} else {
		c.reader[kind] = remain
	}

	log.Debugf("read fragment for %s/%s: len=%d remain=%d",
		addr, kind, len(dc.D), dc.R)

	return dc, nil
}

// Adds a received fragment to the peer's reassembly buffer.  Returns the
// complete message and true once the fragment with R == 0 arrives.  A message
// that would grow beyond the maximum length is discarded and never returned.
func (bm *BufferMap) AppendChunk(addr BleAddr, kind CmdKind,
	dc DataChunk) ([]byte, bool) {

	c := bm.getCursors(addr)

	cur := c.writer[kind]
	if len(cur)+len(dc.D) > bm.maxMsgLen {
		log.Errorf("reassembly limit reached for %s/%s (%d + %d > %d); "+
			"discarding message", addr, kind, len(cur), len(dc.D),
			bm.maxMsgLen)

		delete(c.writer, kind)
		bm.prune(addr)
		return nil, false
	}

	cur = append(cur, dc.D...)

	if dc.R != 0 {
		c.writer[kind] = cur
		log.Debugf("write fragment for %s/%s: have=%d remain=%d",
			addr, kind, len(cur), dc.R)
		return nil, false
	}

	delete(c.writer, kind)
	bm.prune(addr)

	if cur == nil {
		cur = []byte{}
	}

	log.Debugf("write complete for %s/%s: len=%d", addr, kind, len(cur))
	return cur, true
}

// Forgets every read and write cursor for the peer.
func (bm *BufferMap) RemovePeer(addr BleAddr) {
	if _, ok := bm.peers[addr]; !ok {
		log.Debugf("no chunk state for %s", addr)
		return
	}

	delete(bm.peers, addr)
	log.Debugf("removed chunk state for %s", addr)
}
