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

package gatt

import (
	"context"
	"time"

	"github.com/JuulLabs-OSS/ble"
	log "github.com/sirupsen/logrus"

	. "github.com/gamilr/webcam-direct-linux/wcxact/bledefs"
	"github.com/gamilr/webcam-direct-linux/wcxact/server"
)

type SvcCfg struct {
	// Bound on each request to the session server.
	ReqTimeout time.Duration
}

func NewSvcCfg() SvcCfg {
	return SvcCfg{
		ReqTimeout: 10 * time.Second,
	}
}

type notifier interface {
	Context() context.Context
	Write(b []byte) (int, error)
}

// Binds one characteristic to a query kind, a command kind and optionally a
// notification topic.
type chrHandler struct {
	req     server.Requester
	tracker *ConnTracker
	cfg     SvcCfg

	query  QueryKind
	cmd    CmdKind
	topic  PubSubTopic
	notify bool
}

func (h *chrHandler) peer(conn ble.Conn) BleAddr {
	addr := BleAddr(conn.RemoteAddr().String())
	h.tracker.Track(addr, conn)
	return addr
}

func (h *chrHandler) read(addr BleAddr, capLen int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.ReqTimeout)
	defer cancel()

	return h.req.Query(ctx, addr, h.query, capLen)
}

func (h *chrHandler) write(addr BleAddr, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.ReqTimeout)
	defer cancel()

	return h.req.Command(ctx, addr, h.cmd, data)
}

// Forwards every envelope published on the topic until the peer
// unsubscribes.
func (h *chrHandler) forward(addr BleAddr, capLen int, n notifier) error {
	ctx, cancel := context.WithTimeout(n.Context(), h.cfg.ReqTimeout)
	sub, err := h.req.Subscribe(ctx, addr, h.topic, capLen)
	cancel()
	if err != nil {
		return err
	}
	defer sub.Close()

	for {
		b, err := sub.Recv(n.Context())
		if err != nil {
			if n.Context().Err() != nil {
				return nil
			}
			return err
		}

		if _, err := n.Write(b); err != nil {
			return err
		}
	}
}

func (h *chrHandler) handleRead(req ble.Request, rsp ble.ResponseWriter) {
	addr := h.peer(req.Conn())

	b, err := h.read(addr, rsp.Cap())
	if err != nil {
		log.Warnf("read of %s by %s failed: %s", h.query, addr, err.Error())
		rsp.SetStatus(ble.ErrUnlikely)
		return
	}

	if _, err := rsp.Write(b); err != nil {
		log.Warnf("failed to write %s response to %s: %s", h.query, addr,
			err.Error())
	}
}

func (h *chrHandler) handleWrite(req ble.Request, rsp ble.ResponseWriter) {
	addr := h.peer(req.Conn())

	if err := h.write(addr, req.Data()); err != nil {
		log.Warnf("write of %s by %s failed: %s", h.cmd, addr, err.Error())
		rsp.SetStatus(ble.ErrUnlikely)
	}
}

func (h *chrHandler) handleNotify(req ble.Request, n ble.Notifier) {
	addr := h.peer(req.Conn())
	log.Debugf("%s subscribed to %s", addr, h.topic)

	if err := h.forward(addr, n.Cap(), n); err != nil {
		log.Warnf("notifications of %s to %s stopped: %s", h.topic, addr,
			err.Error())
	}

	log.Debugf("%s unsubscribed from %s", addr, h.topic)
}

func (h *chrHandler) attach(c *ble.Characteristic) {
	c.HandleRead(ble.ReadHandlerFunc(h.handleRead))
	c.HandleWrite(ble.WriteHandlerFunc(h.handleWrite))
	if h.notify {
		c.HandleNotify(ble.NotifyHandlerFunc(h.handleNotify))
	}
}

// Provisioning service: reads return the host record, writes register the
// mobile.
func NewProvisionerSvc(req server.Requester, tracker *ConnTracker,
	cfg SvcCfg) *ble.Service {

	svc := ble.NewService(ble.MustParse(ProvSvcUuid))

	h := &chrHandler{
		req:     req,
		tracker: tracker,
		cfg:     cfg,
		query:   QUERY_HOST_INFO,
		cmd:     CMD_REGISTER_MOBILE,
	}
	h.attach(svc.NewCharacteristic(ble.MustParse(ProvInfoChrUuid)))

	return svc
}

// Call setup service, published under the host id.  The mobile writes its
// SDP offer and reads back the answer once notified that it is ready.
func NewSdpExchangerSvc(req server.Requester, tracker *ConnTracker,
	hostId string, cfg SvcCfg) (*ble.Service, error) {

	uuid, err := ble.Parse(hostId)
	if err != nil {
		return nil, err
	}

	svc := ble.NewService(uuid)

	h := &chrHandler{
		req:     req,
		tracker: tracker,
		cfg:     cfg,
		query:   QUERY_SDP_ANSWER,
		cmd:     CMD_SDP_OFFER,
		topic:   TOPIC_SDP_ANSWER_READY,
		notify:  true,
	}
	h.attach(svc.NewCharacteristic(ble.MustParse(SdpExchangeChrUuid)))

	return svc, nil
}
