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
	"testing"

	"github.com/google/go-cmp/cmp"

	. "github.com/gamilr/webcam-direct-linux/wcxact/bledefs"
)

func TestFragmentMatchesNextChunk(t *testing.T) {
	addr := BleAddr("11:22:33:44:55:66")

	for _, msgLen := range []int{0, 1, 10, 11, 300, 5000} {
		for _, fragLen := range []int{1, 10, 100, 1019} {
			msg := patterned(msgLen)

			bm := NewBufferMap(testOverhead, MAX_MSG_LEN)
			want := readAll(t, bm, addr, QUERY_SDP_ANSWER,
				fragLen+testOverhead, msg)

			got := Fragment(msg, fragLen)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("len=%d fragLen=%d (-want +got):\n%s",
					msgLen, fragLen, diff)
			}
		}
	}
}

func TestFragmentInvalidLength(t *testing.T) {
	if frags := Fragment([]byte("abc"), 0); frags != nil {
		t.Fatalf("expected no fragments, got %d", len(frags))
	}
}
