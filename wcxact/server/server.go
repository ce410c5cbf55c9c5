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
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	. "github.com/gamilr/webcam-direct-linux/wcxact/bledefs"
	"github.com/gamilr/webcam-direct-linux/wcxact/chunk"
	"github.com/gamilr/webcam-direct-linux/wcxact/pubsub"
	"github.com/gamilr/webcam-direct-linux/wcxact/wcxutil"
)

type ServerState int

const (
	SERVER_STATE_RUNNING ServerState = iota
	SERVER_STATE_STOPPING
	SERVER_STATE_STOPPED
)

var serverStateStringMap = map[ServerState]string{
	SERVER_STATE_RUNNING:  "running",
	SERVER_STATE_STOPPING: "stopping",
	SERVER_STATE_STOPPED:  "stopped",
}

func (s ServerState) String() string {
	str := serverStateStringMap[s]
	if str == "" {
		return "???"
	}
	return str
}

type ServerCfg struct {
	// Capacity of the request queue.  Submitters block while it is full.
	ReqQueueDepth int

	// Ceiling on a reassembled message and on a read fragment budget.
	MaxMsgLen int

	// Per-subscriber notification backlog.
	TopicBufDepth int
}

func NewServerCfg() ServerCfg {
	return ServerCfg{
		ReqQueueDepth: REQ_QUEUE_DEPTH_DFLT,
		MaxMsgLen:     MAX_MSG_LEN,
		TopicBufDepth: TOPIC_BUF_DEPTH_DFLT,
	}
}

// A single-consumer session loop.  All chunking state, the topic registry and
// the query cache belong to the loop goroutine; callers reach them only
// through a Requester.
type Server struct {
	cfg     ServerCfg
	handler Handler

	// Owned by the loop goroutine.
	bufs   *chunk.BufferMap
	topics map[PubSubTopic]*pubsub.Publisher
	cache  *queryCache

	reqCh  chan *request
	stopCh chan struct{}
	doneCh chan struct{}
	state  ServerState
	mtx    sync.Mutex
	wg     sync.WaitGroup
}

func NewServer(h Handler, cfg ServerCfg) (*Server, error) {
	if h == nil {
		return nil, errors.New("session server requires a handler")
	}
	if cfg.ReqQueueDepth <= 0 {
		return nil, errors.Errorf("invalid request queue depth: %d",
			cfg.ReqQueueDepth)
	}
	if cfg.MaxMsgLen <= 0 {
		return nil, errors.Errorf("invalid max message length: %d",
			cfg.MaxMsgLen)
	}

	overhead, err := chunk.ChunkOverhead(cfg.MaxMsgLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute chunk overhead")
	}

	s := &Server{
		cfg:     cfg,
		handler: h,
		bufs:    chunk.NewBufferMap(overhead, cfg.MaxMsgLen),
		topics:  map[PubSubTopic]*pubsub.Publisher{},
		cache:   newQueryCache(),
		reqCh:   make(chan *request, cfg.ReqQueueDepth),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		state:   SERVER_STATE_RUNNING,
	}

	s.wg.Add(1)
	go s.loop()

	log.Debugf("session server started: queue_depth=%d max_msg_len=%d "+
		"overhead=%d", cfg.ReqQueueDepth, cfg.MaxMsgLen, overhead)

	return s, nil
}

func (s *Server) Requester() Requester {
	return Requester{s}
}

func (s *Server) State() ServerState {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.state
}

// Stops the loop and fails every queued request with a ServerStoppedError.
// Blocks until the loop returns, so calling it from a Handler method
// deadlocks.  Stopping twice is a no-op.
func (s *Server) Stop() {
	s.mtx.Lock()
	if s.state != SERVER_STATE_RUNNING {
		s.mtx.Unlock()
		return
	}
	s.state = SERVER_STATE_STOPPING
	close(s.stopCh)
	s.mtx.Unlock()

	s.wg.Wait()

	s.mtx.Lock()
	s.state = SERVER_STATE_STOPPED
	s.mtx.Unlock()

	log.Debugf("session server stopped")
}

func (s *Server) enqueue(ctx context.Context, req *request) error {
	// Refuse outright once stopped; a select with both cases ready would
	// pick at random.
	select {
	case <-s.stopCh:
		return stoppedErr()
	default:
	}

	select {
	case s.reqCh <- req:
		return nil
	case <-s.stopCh:
		return stoppedErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) await(ctx context.Context,
	req *request) (response, error) {

	select {
	case rsp := <-req.rspCh:
		return rsp, nil
	case <-ctx.Done():
		return response{}, ctx.Err()
	case <-s.doneCh:
		// The drain may have replied just before the loop exited.
		select {
		case rsp := <-req.rspCh:
			return rsp, nil
		default:
			return response{}, stoppedErr()
		}
	}
}

func (s *Server) loop() {
	defer s.wg.Done()
	defer close(s.doneCh)

	for {
		// A pending stop wins over queued requests.
		select {
		case <-s.stopCh:
			s.drain()
			return
		default:
		}

		select {
		case req := <-s.reqCh:
			s.process(req)

		case <-s.stopCh:
			s.drain()
			return
		}
	}
}

// Fails all requests still in the queue.
func (s *Server) drain() {
	n := 0
	for {
		select {
		case req := <-s.reqCh:
			s.reply(req, response{err: stoppedErr()})
			n++
		default:
			if n > 0 {
				log.Debugf("failed %d queued requests on stop", n)
			}
			return
		}
	}
}

func (s *Server) reply(req *request, rsp response) {
	if req.ctx.Err() != nil {
		log.Debugf("requester gone; discarding reply to %s", req)
		if rsp.sub != nil {
			rsp.sub.Close()
		}
		return
	}

	req.rspCh <- rsp
}

func (s *Server) process(req *request) {
	var rsp response

	switch req.typ {
	case REQ_TYPE_QUERY:
		rsp.data, rsp.err = s.processQuery(req)
	case REQ_TYPE_COMMAND:
		rsp.err = s.processCommand(req)
	case REQ_TYPE_SUBSCRIBE:
		rsp.sub, rsp.err = s.processSubscribe(req)
	case REQ_TYPE_PUBLISH:
		rsp.err = s.processPublish(req)
	default:
		rsp.err = errors.Errorf("unknown request type: %d", int(req.typ))
	}

	if rsp.err != nil {
		log.Debugf("%s failed: %s", req, rsp.err.Error())
	}

	s.reply(req, rsp)
}

func (s *Server) processQuery(req *request) ([]byte, error) {
	val, ok := s.cache.get(req.addr, req.query)
	if !ok {
		var err error
		val, err = s.handler.ReadValue(req.query, req.addr)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s for %s",
				req.query, req.addr)
		}
	}

	dc, err := s.bufs.NextChunk(req.addr, req.query, req.maxFragLen, val)
	if err != nil {
		return nil, err
	}

	// Hold the value only while its transfer is in progress.
	if s.bufs.ReadActive(req.addr, req.query) {
		s.cache.put(req.addr, req.query, val)
	} else {
		s.cache.drop(req.addr, req.query)
	}

	b, err := chunk.EncodeChunk(dc)
	if err != nil {
		return nil, err
	}

	wcxutil.TraceBuf("tx fragment", b)
	return b, nil
}

func (s *Server) processCommand(req *request) error {
	wcxutil.TraceBuf("rx fragment", req.data)

	dc, err := chunk.DecodeChunk(req.data)
	if err != nil {
		return err
	}

	msg, done := s.bufs.AppendChunk(req.addr, req.cmd, dc)
	if !done {
		return nil
	}

	if req.cmd == CMD_MOBILE_DISCONNECTED {
		s.bufs.RemovePeer(req.addr)
		s.cache.dropPeer(req.addr)
		return s.handler.PeerGone(req.addr)
	}

	err = s.handler.ApplyMessage(req.cmd, req.addr, msg)

	for _, q := range CmdInvalidatesMap[req.cmd] {
		s.cache.drop(req.addr, q)
	}

	return err
}

func (s *Server) processSubscribe(req *request) (*pubsub.Subscriber, error) {
	pub := s.topics[req.topic]
	if pub == nil {
		fragLen := req.maxFragLen - s.bufs.Overhead()
		if fragLen <= 0 {
			return nil, wcxutil.NewFragBudgetError(req.maxFragLen,
				s.bufs.Overhead())
		}

		pub = pubsub.NewPublisher(fragLen, s.cfg.TopicBufDepth)
		s.topics[req.topic] = pub

		log.Debugf("created topic %s: frag_len=%d", req.topic, fragLen)
	} else if pub.FragLen()+s.bufs.Overhead() != req.maxFragLen {
		log.Debugf("topic %s keeps fragment budget %d; requested %d",
			req.topic, pub.FragLen()+s.bufs.Overhead(), req.maxFragLen)
	}

	if err := s.handler.RegisterSubscriber(req.topic, req.addr,
		pub); err != nil {

		return nil, err
	}

	return pub.Subscribe(), nil
}

func (s *Server) processPublish(req *request) error {
	pub := s.topics[req.topic]
	if pub == nil {
		return wcxutil.FmtTopicNotFoundError("no subscribers ever registered "+
			"for topic %s", req.topic)
	}

	return pub.Publish(req.data)
}
