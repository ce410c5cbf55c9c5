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

	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/gamilr/webcam-direct-linux/wcdirect/config"
)

func configShowCmd(cmd *cobra.Command, args []string) {
	c, err := loadConfig()
	if err != nil {
		wcUsage(nil, err)
	}

	for _, line := range c.Lines() {
		fmt.Printf("    %s\n", line)
	}
}

func configSetCmd(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		wcUsage(cmd, util.NewNewtError("Must specify at least one "+
			"key=value setting"))
	}

	filename, err := cfgFilename()
	if err != nil {
		wcUsage(nil, err)
	}

	c, err := config.Load(filename)
	if err != nil {
		wcUsage(nil, err)
	}

	for _, arg := range args {
		if err := c.Apply(arg); err != nil {
			wcUsage(cmd, err)
		}
	}

	if err := c.Validate(); err != nil {
		wcUsage(nil, err)
	}

	if err := c.Save(filename); err != nil {
		wcUsage(nil, err)
	}

	fmt.Printf("Saved configuration to %s\n", filename)
}

func configCmd() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "View or change the persistent configuration",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Run:   configShowCmd,
	}
	cfgCmd.AddCommand(showCmd)

	setEx := "  wcdirect config set host_name=desk max_msg_len=4096\n"

	setCmd := &cobra.Command{
		Use:     "set <key=value> [key=value...]",
		Short:   "Change settings in the configuration file",
		Example: setEx,
		Run:     configSetCmd,
	}
	cfgCmd.AddCommand(setCmd)

	return cfgCmd
}
