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
	"github.com/ugorji/go/codec"

	"github.com/gamilr/webcam-direct-linux/wcxact/wcxutil"
)

// One transport-sized piece of a larger message.  R is the number of bytes
// still to come after D; the final fragment of a message carries R == 0.
type DataChunk struct {
	R int    `codec:"r"`
	D []byte `codec:"d"`
}

var mpHandle = newMsgpackHandle()

func newMsgpackHandle() *codec.MsgpackHandle {
	mh := new(codec.MsgpackHandle)

	// Encode []byte as msgpack bin rather than raw str.
	mh.WriteExt = true
	mh.ErrorIfNoField = true

	return mh
}

// Returns the envelope msgpack handle.
func MsgpackHandle() *codec.MsgpackHandle {
	return mpHandle
}

func EncodeChunk(c DataChunk) ([]byte, error) {
	if c.R < 0 {
		return nil, wcxutil.FmtChunkCodecError(
			"cannot encode chunk with negative remaining length %d", c.R)
	}

	// A nil slice encodes as msgpack nil, which is shorter than an empty bin
	// and would make the overhead computation lie.
	if c.D == nil {
		c.D = []byte{}
	}

	var b []byte
	if err := codec.NewEncoderBytes(&b, mpHandle).Encode(c); err != nil {
		return nil, wcxutil.FmtChunkCodecError(
			"failed to encode chunk: %s", err.Error())
	}

	return b, nil
}

func DecodeChunk(b []byte) (DataChunk, error) {
	var c DataChunk

	if len(b) == 0 {
		return c, wcxutil.NewChunkCodecError("empty chunk")
	}

	if err := codec.NewDecoderBytes(b, mpHandle).Decode(&c); err != nil {
		return DataChunk{}, wcxutil.FmtChunkCodecError(
			"invalid chunk: %s", err.Error())
	}

	if c.R < 0 {
		return DataChunk{}, wcxutil.FmtChunkCodecError(
			"invalid chunk: negative remaining length %d", c.R)
	}

	return c, nil
}

// Size of the bin payload used to measure the bin header.  Fragments longer
// than 255 bytes need a two-byte length; measuring with one keeps the encoded
// envelope within the caller's budget for every fragment below 64KiB.
const overheadProbeLen = 256

// Computes the fixed per-envelope serialization overhead for messages up to
// maxMsgLen bytes.
func ChunkOverhead(maxMsgLen int) (int, error) {
	b, err := EncodeChunk(DataChunk{
		R: maxMsgLen,
		D: make([]byte, overheadProbeLen),
	})
	if err != nil {
		return 0, err
	}

	return len(b) - overheadProbeLen, nil
}
