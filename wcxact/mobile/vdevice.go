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
	log "github.com/sirupsen/logrus"
)

// A virtual camera fed by one of the mobile's cameras.
type VDevice interface {
	SdpAnswer() string
	Close() error
}

type VDeviceBuilder interface {
	// Creates one virtual device per offered camera, keyed by camera name.
	CreateFrom(mobileName string, offer []CameraSdp) (map[string]VDevice,
		error)
}

type echoDevice struct {
	name string
	sdp  string
}

func (d *echoDevice) SdpAnswer() string {
	return d.sdp
}

func (d *echoDevice) Close() error {
	log.Debugf("closed loopback device %s", d.name)
	return nil
}

// Answers every camera offer with the offer itself.  Useful for bringing up
// the BLE link without a media pipeline.
type EchoBuilder struct{}

func (EchoBuilder) CreateFrom(mobileName string,
	offer []CameraSdp) (map[string]VDevice, error) {

	devs := make(map[string]VDevice, len(offer))
	for _, cam := range offer {
		if _, ok := devs[cam.Name]; ok {
			log.Warnf("duplicate camera %q offered by %s; keeping first",
				cam.Name, mobileName)
			continue
		}

		devs[cam.Name] = &echoDevice{
			name: mobileName + ": " + cam.Name,
			sdp:  cam.Sdp,
		}
	}

	return devs, nil
}
