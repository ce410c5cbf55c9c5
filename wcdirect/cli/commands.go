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
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/gamilr/webcam-direct-linux/wcdirect/config"
	"github.com/gamilr/webcam-direct-linux/wcdirect/wcutil"
	"github.com/gamilr/webcam-direct-linux/wcxact/wcxutil"
)

var WcdirectLogLevel log.Level

var onExit func()

func WcSetOnExit(fn func()) {
	onExit = fn
}

// Runs the registered exit hook, if any.
func WcOnExit() {
	if onExit != nil {
		onExit()
	}
}

func wcUsage(cmd *cobra.Command, err error) {
	if err != nil {
		if nErr, ok := err.(*util.NewtError); ok {
			log.Debugf("%s", nErr.StackTrace)
			fmt.Fprintf(os.Stderr, "Error: %s\n", nErr.Text)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		}
	}

	if cmd != nil {
		fmt.Printf("\n")
		fmt.Printf("%s - ", cmd.Name())
		cmd.Help()
	}

	if onExit != nil {
		onExit()
	}
	os.Exit(1)
}

func cfgFilename() (string, error) {
	if wcutil.CfgPath != "" {
		return wcutil.CfgPath, nil
	}

	return config.DfltFilename()
}

// Loads the configuration file and applies the --cfg overrides.
func loadConfig() (*config.Config, error) {
	filename, err := cfgFilename()
	if err != nil {
		return nil, err
	}

	c, err := config.Load(filename)
	if err != nil {
		return nil, err
	}

	if err := c.Apply(wcutil.CfgOverrides); err != nil {
		return nil, err
	}

	if wcutil.HciIdx != 0 {
		c.CtlrName = fmt.Sprintf("hci%d", wcutil.HciIdx)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func Commands() *cobra.Command {
	logLevelStr := ""
	wcCmd := &cobra.Command{
		Use:   wcutil.ToolInfo.ExeName,
		Short: wcutil.ToolInfo.ShortName + " streams mobile cameras to this host",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			WcdirectLogLevel, err = log.ParseLevel(logLevelStr)
			if err != nil {
				wcUsage(nil, util.ChildNewtError(err))
			}

			err = util.Init(WcdirectLogLevel, "", util.VERBOSITY_DEFAULT)
			if err != nil {
				wcUsage(nil, err)
			}
			wcxutil.SetLogLevel(WcdirectLogLevel)
			wcxutil.Debug = WcdirectLogLevel >= log.DebugLevel

			// Set cbgo log level if we're using macOS.
			OSSpecificInit()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	wcCmd.PersistentFlags().StringVarP(&logLevelStr, "loglevel", "l", "info",
		"log level to use")

	wcCmd.PersistentFlags().StringVar(&wcutil.CfgOverrides, "cfg", "",
		"comma-separated key=value settings overriding the config file")

	wcCmd.PersistentFlags().StringVar(&wcutil.CfgPath, "cfgfile", "",
		"config file to use instead of ~/"+wcutil.ToolInfo.CfgFilename)

	wcCmd.PersistentFlags().IntVarP(&wcutil.HciIdx, "hci", "i",
		0, "HCI index for the controller on Linux machine")

	versCmd := &cobra.Command{
		Use:     "version",
		Short:   "Display the " + wcutil.ToolInfo.ShortName + " version number",
		Example: "  " + wcutil.ToolInfo.ExeName + " version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n",
				wcutil.ToolInfo.LongName,
				wcutil.ToolInfo.VersionString)
		},
	}
	wcCmd.AddCommand(versCmd)

	wcCmd.AddCommand(serveCmd())
	wcCmd.AddCommand(configCmd())

	return wcCmd
}
