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
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	. "github.com/gamilr/webcam-direct-linux/wcxact/bledefs"
	"github.com/gamilr/webcam-direct-linux/wcxact/chunk"
	"github.com/gamilr/webcam-direct-linux/wcxact/pubsub"
	"github.com/gamilr/webcam-direct-linux/wcxact/wcxutil"
)

type ReqType int

const (
	REQ_TYPE_QUERY ReqType = iota
	REQ_TYPE_COMMAND
	REQ_TYPE_SUBSCRIBE
	REQ_TYPE_PUBLISH
)

var reqTypeStringMap = map[ReqType]string{
	REQ_TYPE_QUERY:     "query",
	REQ_TYPE_COMMAND:   "command",
	REQ_TYPE_SUBSCRIBE: "subscribe",
	REQ_TYPE_PUBLISH:   "publish",
}

func (t ReqType) String() string {
	s := reqTypeStringMap[t]
	if s == "" {
		return "???"
	}
	return s
}

// The server's reply to a single request.
type response struct {
	data []byte
	sub  *pubsub.Subscriber
	err  error
}

type request struct {
	typ  ReqType
	ctx  context.Context
	addr BleAddr

	query      QueryKind
	cmd        CmdKind
	topic      PubSubTopic
	maxFragLen int
	data       []byte

	// Single use; buffered so the server never blocks on a reply.
	rspCh chan response
}

func (r *request) String() string {
	var kind string
	switch r.typ {
	case REQ_TYPE_QUERY:
		kind = r.query.String()
	case REQ_TYPE_COMMAND:
		kind = r.cmd.String()
	default:
		kind = r.topic.String()
	}

	return fmt.Sprintf("%s %s addr=%s", r.typ, kind, r.addr)
}

// Submits requests to a session server.  A Requester is a small value; copy it
// freely between goroutines.
type Requester struct {
	s *Server
}

func (r Requester) do(ctx context.Context, req *request) (response, error) {
	req.ctx = ctx
	req.rspCh = make(chan response, 1)

	if err := r.s.enqueue(ctx, req); err != nil {
		return response{}, err
	}

	return r.s.await(ctx, req)
}

// Requests the next encoded envelope of the peer's current value for kind.
// maxFragLen bounds the size of the encoded envelope.
func (r Requester) Query(ctx context.Context, addr BleAddr, kind QueryKind,
	maxFragLen int) ([]byte, error) {

	rsp, err := r.do(ctx, &request{
		typ:        REQ_TYPE_QUERY,
		addr:       addr,
		query:      kind,
		maxFragLen: maxFragLen,
	})
	if err != nil {
		return nil, err
	}

	return rsp.data, rsp.err
}

// Delivers one encoded envelope of a command message.  A nil return means the
// envelope was accepted; the command is applied once its final envelope
// arrives, and that call reports the application result.
func (r Requester) Command(ctx context.Context, addr BleAddr, kind CmdKind,
	frag []byte) error {

	rsp, err := r.do(ctx, &request{
		typ:  REQ_TYPE_COMMAND,
		addr: addr,
		cmd:  kind,
		data: frag,
	})
	if err != nil {
		return err
	}

	return rsp.err
}

func (r Requester) Subscribe(ctx context.Context, addr BleAddr,
	topic PubSubTopic, maxFragLen int) (*pubsub.Subscriber, error) {

	rsp, err := r.do(ctx, &request{
		typ:        REQ_TYPE_SUBSCRIBE,
		addr:       addr,
		topic:      topic,
		maxFragLen: maxFragLen,
	})
	if err != nil {
		return nil, err
	}

	return rsp.sub, rsp.err
}

func (r Requester) Publish(ctx context.Context, addr BleAddr,
	topic PubSubTopic, payload []byte) error {

	rsp, err := r.do(ctx, &request{
		typ:   REQ_TYPE_PUBLISH,
		addr:  addr,
		topic: topic,
		data:  payload,
	})
	if err != nil {
		return err
	}

	return rsp.err
}

// Reports that the link to the peer is gone.  All chunking state for the
// peer is dropped and the handler is told.
func (r Requester) Disconnect(ctx context.Context, addr BleAddr) error {
	frag, err := chunk.EncodeChunk(chunk.DataChunk{R: 0, D: []byte{}})
	if err != nil {
		return err
	}

	log.Debugf("submitting disconnect for %s", addr)
	return r.Command(ctx, addr, CMD_MOBILE_DISCONNECTED, frag)
}

func stoppedErr() error {
	return wcxutil.NewServerStoppedError("session server stopped")
}
