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

package mobile

import (
	"github.com/pkg/errors"
	"github.com/ugorji/go/codec"
)

// Connection the host offers to a provisioned mobile.
const (
	CONN_TYPE_WLAN = "WLAN"
	CONN_TYPE_LAN  = "LAN"
)

type HostProvInfo struct {
	Id             string `codec:"id"`
	Name           string `codec:"name"`
	ConnectionType string `codec:"connection_type"`
}

type MobileSchema struct {
	Id   string `codec:"id"`
	Name string `codec:"name"`
}

type VideoProp struct {
	// Width, height.
	Resolution [2]uint32 `codec:"resolution"`
	Fps        uint32    `codec:"fps"`
}

type CameraSdp struct {
	Name   string    `codec:"name"`
	Format VideoProp `codec:"format"`
	Sdp    string    `codec:"sdp"`
}

type MobileSdpOffer struct {
	MobileId    string      `codec:"mobile_id"`
	CameraOffer []CameraSdp `codec:"camera_offer"`
}

type MobileSdpAnswer struct {
	CameraAnswer []CameraSdp `codec:"camera_answer"`
}

type SdpAnswerReady struct {
	MobileId string `codec:"mobile_id"`
}

var mpHandle = newMsgpackHandle()

func newMsgpackHandle() *codec.MsgpackHandle {
	mh := new(codec.MsgpackHandle)
	mh.WriteExt = true
	return mh
}

// Serializes an application message as a msgpack map.
func EncodeMsg(v interface{}) ([]byte, error) {
	var b []byte
	if err := codec.NewEncoderBytes(&b, mpHandle).Encode(v); err != nil {
		return nil, errors.Wrapf(err, "failed to encode %T", v)
	}

	return b, nil
}

func DecodeMsg(b []byte, v interface{}) error {
	if len(b) == 0 {
		return errors.Errorf("empty %T message", v)
	}

	if err := codec.NewDecoderBytes(b, mpHandle).Decode(v); err != nil {
		return errors.Wrapf(err, "invalid %T message", v)
	}

	return nil
}
