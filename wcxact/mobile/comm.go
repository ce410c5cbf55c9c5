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
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	. "github.com/gamilr/webcam-direct-linux/wcxact/bledefs"
	"github.com/gamilr/webcam-direct-linux/wcxact/pubsub"
	"github.com/gamilr/webcam-direct-linux/wcxact/wcxutil"
)

// State of a mobile that subscribed for SDP answers.
type peerInfo struct {
	pub      *pubsub.Publisher
	vdevices map[string]VDevice
}

func (p *peerInfo) closeDevices() {
	for name, vd := range p.vdevices {
		if err := vd.Close(); err != nil {
			log.Warnf("failed to close virtual device %s: %s", name,
				err.Error())
		}
	}
	p.vdevices = map[string]VDevice{}
}

// Provisioning and call setup for mobiles.  Implements server.Handler; all
// methods run on the session server's loop and are not safe for concurrent
// use otherwise.
type MobileComm struct {
	store   AppDataStore
	builder VDeviceBuilder
	peers   map[BleAddr]*peerInfo
}

func NewMobileComm(store AppDataStore, builder VDeviceBuilder) *MobileComm {
	return &MobileComm{
		store:   store,
		builder: builder,
		peers:   map[BleAddr]*peerInfo{},
	}
}

func (mc *MobileComm) NumPeers() int {
	return len(mc.peers)
}

func (mc *MobileComm) ReadValue(kind QueryKind, addr BleAddr) ([]byte, error) {
	switch kind {
	case QUERY_HOST_INFO:
		log.Debugf("host info requested by %s", addr)

		info, err := mc.store.HostProvInfo()
		if err != nil {
			return nil, err
		}
		return EncodeMsg(info)

	case QUERY_SDP_ANSWER:
		log.Debugf("sdp answer requested by %s", addr)
		return mc.sdpAnswer(addr)

	default:
		return nil, errors.Errorf("unsupported query: %s", kind)
	}
}

func (mc *MobileComm) sdpAnswer(addr BleAddr) ([]byte, error) {
	p := mc.peers[addr]
	if p == nil {
		return nil, wcxutil.FmtNotFoundError(
			"mobile not in connected devices: %s", addr)
	}

	names := make([]string, 0, len(p.vdevices))
	for name := range p.vdevices {
		names = append(names, name)
	}
	sort.Strings(names)

	answer := MobileSdpAnswer{
		CameraAnswer: make([]CameraSdp, 0, len(names)),
	}
	for _, name := range names {
		answer.CameraAnswer = append(answer.CameraAnswer, CameraSdp{
			Name: name,
			Sdp:  p.vdevices[name].SdpAnswer(),
		})
	}

	return EncodeMsg(answer)
}

func (mc *MobileComm) ApplyMessage(kind CmdKind, addr BleAddr,
	msg []byte) error {

	switch kind {
	case CMD_REGISTER_MOBILE:
		var m MobileSchema
		if err := DecodeMsg(msg, &m); err != nil {
			return err
		}

		log.Debugf("registering mobile %s: id=%s name=%s", addr, m.Id, m.Name)
		return mc.store.AddMobile(m)

	case CMD_SDP_OFFER:
		var offer MobileSdpOffer
		if err := DecodeMsg(msg, &offer); err != nil {
			return err
		}

		return mc.setSdpOffer(addr, offer)

	case CMD_MOBILE_DISCONNECTED:
		return mc.PeerGone(addr)

	default:
		return errors.Errorf("unsupported command: %s", kind)
	}
}

func (mc *MobileComm) setSdpOffer(addr BleAddr, offer MobileSdpOffer) error {
	m, err := mc.store.Mobile(offer.MobileId)
	if err != nil {
		return err
	}

	p := mc.peers[addr]
	if p == nil {
		return wcxutil.FmtNotFoundError(
			"mobile not in connected devices: %s", addr)
	}
	if p.pub == nil {
		return wcxutil.FmtNotFoundError("no publisher for mobile %s", addr)
	}

	devs, err := mc.builder.CreateFrom(m.Name, offer.CameraOffer)
	if err != nil {
		return errors.Wrapf(err, "failed to create virtual devices for %s",
			m.Name)
	}

	p.closeDevices()
	p.vdevices = devs

	log.Infof("created %d virtual devices for mobile %s (%s)", len(devs),
		m.Name, addr)

	ready, err := EncodeMsg(SdpAnswerReady{MobileId: offer.MobileId})
	if err != nil {
		return err
	}

	return p.pub.Publish(ready)
}

func (mc *MobileComm) RegisterSubscriber(topic PubSubTopic, addr BleAddr,
	pub *pubsub.Publisher) error {

	switch topic {
	case TOPIC_SDP_ANSWER_READY:
		log.Debugf("%s subscribed to %s", addr, topic)

		if p := mc.peers[addr]; p != nil {
			p.closeDevices()
		}
		mc.peers[addr] = &peerInfo{
			pub:      pub,
			vdevices: map[string]VDevice{},
		}
		return nil

	default:
		return errors.Errorf("unsupported topic: %s", topic)
	}
}

func (mc *MobileComm) PeerGone(addr BleAddr) error {
	p := mc.peers[addr]
	if p == nil {
		return wcxutil.FmtNotFoundError(
			"mobile not in connected devices: %s", addr)
	}

	p.closeDevices()
	delete(mc.peers, addr)

	log.Debugf("mobile %s disconnected", addr)
	return nil
}
