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

package config

import (
	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mynewt.apache.org/newt/util"

	"github.com/gamilr/webcam-direct-linux/wcdirect/wcutil"
	"github.com/gamilr/webcam-direct-linux/wcxact/bledefs"
)

const HOST_ID_DFLT = "E0A6D8C2-7E1F-4A49-9F5B-2C0B6B2E8E11"
const HOST_NAME_DFLT = "MyPC"
const REQ_TIMEOUT_MS_DFLT = 10000

type Config struct {
	HostName      string `json:"host_name"`
	HostId        string `json:"host_id"`
	CtlrName      string `json:"ctlr_name"`
	ReqQueueDepth int    `json:"req_queue_depth"`
	MaxMsgLen     int    `json:"max_msg_len"`
	TopicBufDepth int    `json:"topic_buf_depth"`
	ReqTimeoutMs  int    `json:"req_timeout_ms"`
}

func (c *Config) String() string {
	return fmt.Sprintf("host_name=%s host_id=%s ctlr_name=%s "+
		"req_queue_depth=%d max_msg_len=%d topic_buf_depth=%d "+
		"req_timeout_ms=%d",
		c.HostName, c.HostId, c.CtlrName, c.ReqQueueDepth, c.MaxMsgLen,
		c.TopicBufDepth, c.ReqTimeoutMs)
}

func NewConfig() *Config {
	name, err := os.Hostname()
	if err != nil || name == "" {
		name = HOST_NAME_DFLT
	}

	return &Config{
		HostName:      name,
		HostId:        HOST_ID_DFLT,
		CtlrName:      "default",
		ReqQueueDepth: bledefs.REQ_QUEUE_DEPTH_DFLT,
		MaxMsgLen:     bledefs.MAX_MSG_LEN,
		TopicBufDepth: bledefs.TOPIC_BUF_DEPTH_DFLT,
		ReqTimeoutMs:  REQ_TIMEOUT_MS_DFLT,
	}
}

// Path of the configuration file in the user's home directory.
func DfltFilename() (string, error) {
	dir, err := homedir.Dir()
	if err != nil {
		return "", util.NewNewtError(err.Error())
	}

	return filepath.Join(dir, wcutil.ToolInfo.CfgFilename), nil
}

// Reads the configuration file.  Settings missing from the file keep their
// defaults; a missing file yields the defaults.
func Load(filename string) (*Config, error) {
	c := NewConfig()

	log.Debugf("Reading configuration from %s", filename)
	blob, err := ioutil.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		} else {
			return nil, util.ChildNewtError(err)
		}
	}

	if err := json.Unmarshal(blob, c); err != nil {
		return nil, util.FmtNewtError("error reading configuration "+
			"(%s): %s", filename, err.Error())
	}

	return c, nil
}

func (c *Config) Save(filename string) error {
	b, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return util.NewNewtError(err.Error())
	}

	if err := ioutil.WriteFile(filename, b, 0644); err != nil {
		return util.ChildNewtError(err)
	}

	return nil
}

func einvalCfgString(f string, args ...interface{}) error {
	suffix := fmt.Sprintf(f, args...)
	return util.FmtNewtError("Invalid configuration string; %s", suffix)
}

func parseInt(k string, v string) (int, error) {
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, einvalCfgString("%s requires an integer: %s", k, v)
	}
	if n <= 0 {
		return 0, einvalCfgString("%s must be positive: %d", k, n)
	}

	return n, nil
}

// Applies comma-separated key=value overrides.
func (c *Config) Apply(cs string) error {
	if strings.TrimSpace(cs) == "" {
		return nil
	}

	parts := strings.Split(cs, ",")
	for _, p := range parts {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return einvalCfgString("expected comma-separated "+
				"key=value pairs; no '=' in: %s", p)
		}

		k := strings.TrimSpace(kv[0])
		v := strings.TrimSpace(kv[1])

		var err error
		switch k {
		case "host_name":
			c.HostName = v
		case "host_id":
			c.HostId = v
		case "ctlr_name":
			c.CtlrName = v
		case "req_queue_depth":
			c.ReqQueueDepth, err = parseInt(k, v)
		case "max_msg_len":
			c.MaxMsgLen, err = parseInt(k, v)
		case "topic_buf_depth":
			c.TopicBufDepth, err = parseInt(k, v)
		case "req_timeout_ms":
			c.ReqTimeoutMs, err = parseInt(k, v)
		default:
			return einvalCfgString("Unrecognized key: %s", k)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) Validate() error {
	if c.HostName == "" {
		return util.NewNewtError("host_name must not be empty")
	}
	if c.HostId == "" {
		return util.NewNewtError("host_id must not be empty")
	}
	if c.ReqQueueDepth <= 0 || c.MaxMsgLen <= 0 || c.TopicBufDepth <= 0 ||
		c.ReqTimeoutMs <= 0 {

		return util.FmtNewtError("numeric settings must be positive: %s",
			c.String())
	}

	return nil
}

// Sorted "key=value" lines, for display.
func (c *Config) Lines() []string {
	b, err := json.Marshal(c)
	if err != nil {
		return nil
	}

	m := map[string]interface{}{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}

	lines := make([]string, 0, len(m))
	for k, v := range m {
		lines = append(lines, fmt.Sprintf("%s=%s", k, cast.ToString(v)))
	}
	sort.Strings(lines)

	return lines
}
