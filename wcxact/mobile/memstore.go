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
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/gamilr/webcam-direct-linux/wcxact/wcxutil"
)

// Application data behind the BLE link.
type AppDataStore interface {
	HostProvInfo() (HostProvInfo, error)
	AddMobile(m MobileSchema) error
	Mobile(id string) (MobileSchema, error)
}

// An AppDataStore that forgets everything on exit.
type MemStore struct {
	host    HostProvInfo
	mobiles map[string]MobileSchema
	mtx     sync.Mutex
}

func NewMemStore(host HostProvInfo) *MemStore {
	return &MemStore{
		host:    host,
		mobiles: map[string]MobileSchema{},
	}
}

func (ms *MemStore) HostProvInfo() (HostProvInfo, error) {
	return ms.host, nil
}

// Adds or replaces a mobile.
func (ms *MemStore) AddMobile(m MobileSchema) error {
	if m.Id == "" {
		return errors.New("mobile has no id")
	}

	ms.mtx.Lock()
	defer ms.mtx.Unlock()

	if _, ok := ms.mobiles[m.Id]; ok {
		log.Debugf("replacing mobile id=%s", m.Id)
	}
	ms.mobiles[m.Id] = m

	return nil
}

func (ms *MemStore) Mobile(id string) (MobileSchema, error) {
	ms.mtx.Lock()
	defer ms.mtx.Unlock()

	m, ok := ms.mobiles[id]
	if !ok {
		return MobileSchema{}, wcxutil.FmtNotFoundError(
			"mobile not registered: id=%s", id)
	}

	return m, nil
}

func (ms *MemStore) NumMobiles() int {
	ms.mtx.Lock()
	defer ms.mtx.Unlock()

	return len(ms.mobiles)
}
