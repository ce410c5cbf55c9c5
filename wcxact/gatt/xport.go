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

	"github.com/JuulLabs-OSS/ble"
	"github.com/JuulLabs-OSS/ble/examples/lib/dev"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type XportCfg struct {
	CtlrName string
}

func NewXportCfg() XportCfg {
	return XportCfg{
		CtlrName: "default",
	}
}

// Owns the local BLE controller.  Services are added and advertised through
// the package-level default device once Start succeeds.
type Xport struct {
	cfg XportCfg
}

func NewXport(cfg XportCfg) *Xport {
	return &Xport{
		cfg: cfg,
	}
}

func (x *Xport) Start() error {
	d, err := dev.NewDevice(x.cfg.CtlrName)
	if err != nil {
		return errors.Wrapf(err, "failed to open BLE controller %q",
			x.cfg.CtlrName)
	}

	ble.SetDefaultDevice(d)
	log.Debugf("BLE controller %q started", x.cfg.CtlrName)

	return nil
}

func (x *Xport) Stop() error {
	if err := ble.Stop(); err != nil {
		return err
	}

	return nil
}

func (x *Xport) AddService(svc *ble.Service) error {
	if err := ble.AddService(svc); err != nil {
		return errors.Wrapf(err, "failed to add service %s", svc.UUID)
	}

	return nil
}

// Advertises the local name and service UUIDs until ctx is done.
func (x *Xport) Advertise(ctx context.Context, name string,
	uuids ...string) error {

	parsed := make([]ble.UUID, 0, len(uuids))
	for _, s := range uuids {
		u, err := ble.Parse(s)
		if err != nil {
			return errors.Wrapf(err, "invalid service uuid %q", s)
		}
		parsed = append(parsed, u)
	}

	log.Infof("advertising %q with %d services", name, len(parsed))

	return ble.AdvertiseNameAndServices(ctx, name, parsed...)
}
