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

package main

import (
	"os"
	"os/signal"
	"syscall"

	"mynewt.apache.org/newt/util"

	"github.com/gamilr/webcam-direct-linux/wcdirect/cli"
	"github.com/gamilr/webcam-direct-linux/wcdirect/wcutil"
)

func main() {
	wcutil.ToolInfo = wcutil.ToolInfoType{
		ExeName:       "wcdirect",
		ShortName:     "wcdirect",
		LongName:      "Webcam Direct",
		VersionString: "0.1.0",
		CfgFilename:   ".wcdirect.json",
	}

	defer cli.WcOnExit()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		for {
			s := <-sigChan
			switch s {
			case os.Interrupt, syscall.SIGTERM:
				cli.WcOnExit()
				os.Exit(0)

			case syscall.SIGQUIT:
				util.PrintStacks()
			}
		}
	}()

	cli.Commands().Execute()
}
