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

package server

import (
	. "github.com/gamilr/webcam-direct-linux/wcxact/bledefs"
	"github.com/gamilr/webcam-direct-linux/wcxact/pubsub"
)

// Application semantics behind the session server.  The server calls these
// from its single loop goroutine, one call at a time; implementations must
// not submit requests back to the same server from inside a call.
type Handler interface {
	// Returns the current full value for a query kind.  The server caches it
	// for the duration of one chunked transfer to the peer.
	ReadValue(kind QueryKind, addr BleAddr) ([]byte, error)

	// Applies a fully reassembled command message.
	ApplyMessage(kind CmdKind, addr BleAddr, msg []byte) error

	// Called on every subscription, before the subscriber is handed back.
	RegisterSubscriber(topic PubSubTopic, addr BleAddr,
		pub *pubsub.Publisher) error

	PeerGone(addr BleAddr) error
}
