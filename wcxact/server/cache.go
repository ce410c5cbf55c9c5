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
)

// Query values held for the duration of one chunked read transfer, so every
// fragment of a transfer is cut from the same bytes.
type queryCache struct {
	vals map[BleAddr]map[QueryKind][]byte
}

func newQueryCache() *queryCache {
	return &queryCache{
		vals: map[BleAddr]map[QueryKind][]byte{},
	}
}

func (c *queryCache) get(addr BleAddr, kind QueryKind) ([]byte, bool) {
	v, ok := c.vals[addr][kind]
	return v, ok
}

func (c *queryCache) put(addr BleAddr, kind QueryKind, val []byte) {
	m := c.vals[addr]
	if m == nil {
		m = map[QueryKind][]byte{}
		c.vals[addr] = m
	}

	m[kind] = val
}

func (c *queryCache) drop(addr BleAddr, kind QueryKind) {
	m := c.vals[addr]
	if m == nil {
		return
	}

	delete(m, kind)
	if len(m) == 0 {
		delete(c.vals, addr)
	}
}

func (c *queryCache) dropPeer(addr BleAddr) {
	delete(c.vals, addr)
}

func (c *queryCache) len() int {
	n := 0
	for _, m := range c.vals {
		n += len(m)
	}
	return n
}
