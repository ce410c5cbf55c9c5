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

package cli

import (
	"context"
	"sync"
	"time"

	"github.com/fatih/structs"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/gamilr/webcam-direct-linux/wcdirect/config"
	"github.com/gamilr/webcam-direct-linux/wcdirect/wcutil"
	"github.com/gamilr/webcam-direct-linux/wcxact/bledefs"
	"github.com/gamilr/webcam-direct-linux/wcxact/gatt"
	"github.com/gamilr/webcam-direct-linux/wcxact/mobile"
	"github.com/gamilr/webcam-direct-linux/wcxact/server"
)

// A running daemon.  Stop tears it down in reverse order of construction.
type daemon struct {
	cancel  context.CancelFunc
	srv     *server.Server
	xport   *gatt.Xport
	tracker *gatt.ConnTracker
	advWg   sync.WaitGroup
	once    sync.Once
	done    chan struct{}
}

func (d *daemon) Stop() {
	d.once.Do(func() {
		d.cancel()
		d.advWg.Wait()

		if d.xport != nil {
			if err := d.xport.Stop(); err != nil {
				log.Warnf("failed to stop BLE controller: %s", err.Error())
			}
		}
		if d.srv != nil {
			d.srv.Stop()
		}

		close(d.done)
	})
}

func serverCfg(c *config.Config) server.ServerCfg {
	cfg := server.NewServerCfg()
	cfg.ReqQueueDepth = c.ReqQueueDepth
	cfg.MaxMsgLen = c.MaxMsgLen
	cfg.TopicBufDepth = c.TopicBufDepth

	return cfg
}

func startDaemon(c *config.Config) (*daemon, error) {
	ctx, cancel := context.WithCancel(context.Background())
	d := &daemon{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	store := mobile.NewMemStore(mobile.HostProvInfo{
		Id:             c.HostId,
		Name:           c.HostName,
		ConnectionType: mobile.CONN_TYPE_WLAN,
	})
	mc := mobile.NewMobileComm(store, mobile.EchoBuilder{})

	srv, err := server.NewServer(mc, serverCfg(c))
	if err != nil {
		d.Stop()
		return nil, util.ChildNewtError(err)
	}
	d.srv = srv
	req := srv.Requester()

	xcfg := gatt.NewXportCfg()
	xcfg.CtlrName = c.CtlrName

	x := gatt.NewXport(xcfg)
	if err := x.Start(); err != nil {
		d.Stop()
		return nil, util.ChildNewtError(err)
	}
	d.xport = x

	reqTimeout := time.Duration(c.ReqTimeoutMs) * time.Millisecond

	d.tracker = gatt.NewConnTracker(func(addr bledefs.BleAddr) {
		ctx, cancel := context.WithTimeout(context.Background(), reqTimeout)
		defer cancel()

		if err := req.Disconnect(ctx, addr); err != nil {
			log.Debugf("disconnect of %s: %s", addr, err.Error())
		}
	})

	scfg := gatt.NewSvcCfg()
	scfg.ReqTimeout = reqTimeout

	prov := gatt.NewProvisionerSvc(req, d.tracker, scfg)
	sdp, err := gatt.NewSdpExchangerSvc(req, d.tracker, c.HostId, scfg)
	if err != nil {
		d.Stop()
		return nil, util.FmtNewtError("invalid host_id %q: %s", c.HostId,
			err.Error())
	}

	if err := x.AddService(prov); err != nil {
		d.Stop()
		return nil, util.ChildNewtError(err)
	}
	if err := x.AddService(sdp); err != nil {
		d.Stop()
		return nil, util.ChildNewtError(err)
	}

	d.advWg.Add(1)
	go func() {
		defer d.advWg.Done()

		err := x.Advertise(ctx, c.HostName, bledefs.ProvSvcUuid, c.HostId)
		if err != nil && !wcutil.ErrorCausedBy(err, context.Canceled) {
			log.Errorf("advertising stopped: %s", err.Error())
		}
	}()

	return d, nil
}

func serveRunCmd(cmd *cobra.Command, args []string) {
	c, err := loadConfig()
	if err != nil {
		wcUsage(nil, err)
	}

	log.WithFields(log.Fields(structs.Map(c))).Info("starting " +
		wcutil.ToolInfo.LongName)

	d, err := startDaemon(c)
	if err != nil {
		wcUsage(nil, err)
	}

	WcSetOnExit(d.Stop)
	log.Infof("serving %s (%s)", c.HostName, c.HostId)

	<-d.done
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the provisioning and SDP exchange BLE services",
		Run:   serveRunCmd,
	}
}
