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

// Splits data into consecutive fragments of at most fragLen payload bytes.
// The slicing matches repeated NextChunk calls with a constant budget of
// fragLen plus the envelope overhead.  Empty data yields a single empty
// fragment.
func Fragment(data []byte, fragLen int) []DataChunk {
	if fragLen <= 0 {
		return nil
	}

	if len(data) == 0 {
		return []DataChunk{{R: 0, D: []byte{}}}
	}

	frags := make([]DataChunk, 0, (len(data)+fragLen-1)/fragLen)

	remain := len(data)
	for remain > 0 {
		start := len(data) - remain

		n := fragLen
		if n > remain {
			n = remain
		}
		remain -= n

		frags = append(frags, DataChunk{
			R: remain,
			D: data[start : start+n],
		})
	}

	return frags
}
