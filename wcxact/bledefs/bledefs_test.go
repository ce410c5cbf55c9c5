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

package bledefs

import (
	"encoding/json"
	"testing"
)

func TestKindStrings(t *testing.T) {
	for k, name := range QueryKindStringMap {
		got, err := QueryKindFromString(name)
		if err != nil {
			t.Fatalf("QueryKindFromString(%q): %v", name, err)
		}
		if got != k {
			t.Fatalf("QueryKindFromString(%q) = %d, want %d", name, got, k)
		}
	}

	for k, name := range CmdKindStringMap {
		got, err := CmdKindFromString(name)
		if err != nil {
			t.Fatalf("CmdKindFromString(%q): %v", name, err)
		}
		if got != k {
			t.Fatalf("CmdKindFromString(%q) = %d, want %d", name, got, k)
		}
	}

	if _, err := PubSubTopicFromString("nope"); err == nil {
		t.Fatal("expected error for unknown topic")
	}
	if s := QueryKindToString(QueryKind(99)); s != "???" {
		t.Fatalf("unknown kind string = %q", s)
	}
}

func TestCmdKindJSON(t *testing.T) {
	b, err := json.Marshal(CMD_SDP_OFFER)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"sdp_offer"` {
		t.Fatalf("marshal = %s", b)
	}

	var k CmdKind
	if err := json.Unmarshal([]byte(`"register_mobile"`), &k); err != nil {
		t.Fatal(err)
	}
	if k != CMD_REGISTER_MOBILE {
		t.Fatalf("unmarshal = %v", k)
	}
}
