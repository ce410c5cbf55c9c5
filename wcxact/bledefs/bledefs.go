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
	"fmt"
)

// Largest message either side will reassemble.  Both ends of the link must
// agree on this value; it also determines the envelope overhead.
const MAX_MSG_LEN = 5000

// Default depth of the session request queue.
const REQ_QUEUE_DEPTH_DFLT = 512

// Default per-subscriber notification buffer.
const TOPIC_BUF_DEPTH_DFLT = 128

const ProvSvcUuid = "A1B2C3D4-0000-4000-8000-00805F9B34FB"
const ProvInfoChrUuid = "A1B2C3D4-0001-4000-8000-00805F9B34FB"
const SdpExchangeChrUuid = "A1B2C3D4-0002-4000-8000-00805F9B34FB"

// Identifies a connected peer.  The value is opaque to the transport core; the
// GATT binding uses the textual MAC address.
type BleAddr string

func (a BleAddr) String() string {
	return string(a)
}

// Read-initiated message kinds.
type QueryKind int

const (
	QUERY_HOST_INFO QueryKind = iota
	QUERY_SDP_ANSWER
)

var QueryKindStringMap = map[QueryKind]string{
	QUERY_HOST_INFO:  "host_info",
	QUERY_SDP_ANSWER: "sdp_answer",
}

func QueryKindToString(k QueryKind) string {
	s := QueryKindStringMap[k]
	if s == "" {
		return "???"
	}

	return s
}

func QueryKindFromString(s string) (QueryKind, error) {
	for k, name := range QueryKindStringMap {
		if s == name {
			return k, nil
		}
	}

	return QueryKind(0), fmt.Errorf("Invalid QueryKind string: %s", s)
}

func (k QueryKind) String() string {
	return QueryKindToString(k)
}

func (k QueryKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(QueryKindToString(k))
}

func (k *QueryKind) UnmarshalJSON(data []byte) error {
	var err error

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*k, err = QueryKindFromString(s)
	return err
}

// Write-initiated message kinds.
type CmdKind int

const (
	CMD_MOBILE_DISCONNECTED CmdKind = iota
	CMD_REGISTER_MOBILE
	CMD_SDP_OFFER
)

var CmdKindStringMap = map[CmdKind]string{
	CMD_MOBILE_DISCONNECTED: "mobile_disconnected",
	CMD_REGISTER_MOBILE:     "register_mobile",
	CMD_SDP_OFFER:           "sdp_offer",
}

func CmdKindToString(k CmdKind) string {
	s := CmdKindStringMap[k]
	if s == "" {
		return "???"
	}

	return s
}

func CmdKindFromString(s string) (CmdKind, error) {
	for k, name := range CmdKindStringMap {
		if s == name {
			return k, nil
		}
	}

	return CmdKind(0), fmt.Errorf("Invalid CmdKind string: %s", s)
}

func (k CmdKind) String() string {
	return CmdKindToString(k)
}

func (k CmdKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(CmdKindToString(k))
}

func (k *CmdKind) UnmarshalJSON(data []byte) error {
	var err error

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*k, err = CmdKindFromString(s)
	return err
}

// Query kinds whose cached values go stale once a command of the given kind
// has been fully applied.
var CmdInvalidatesMap = map[CmdKind][]QueryKind{
	CMD_SDP_OFFER: {QUERY_SDP_ANSWER},
}

// Server-initiated notification channels.
type PubSubTopic int

const (
	TOPIC_SDP_ANSWER_READY PubSubTopic = iota
)

var PubSubTopicStringMap = map[PubSubTopic]string{
	TOPIC_SDP_ANSWER_READY: "sdp_answer_ready",
}

func PubSubTopicToString(t PubSubTopic) string {
	s := PubSubTopicStringMap[t]
	if s == "" {
		return "???"
	}

	return s
}

func PubSubTopicFromString(s string) (PubSubTopic, error) {
	for t, name := range PubSubTopicStringMap {
		if s == name {
			return t, nil
		}
	}

	return PubSubTopic(0), fmt.Errorf("Invalid PubSubTopic string: %s", s)
}

func (t PubSubTopic) String() string {
	return PubSubTopicToString(t)
}
