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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApply(t *testing.T) {
	c := NewConfig()

	err := c.Apply("host_name=desk, max_msg_len=4096,ctlr_name=hci1")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := NewConfig()
	want.HostName = "desk"
	want.MaxMsgLen = 4096
	want.CtlrName = "hci1"

	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

func TestApplyRejects(t *testing.T) {
	tests := []string{
		"host_name",
		"bogus=1",
		"max_msg_len=lots",
		"req_queue_depth=0",
		"topic_buf_depth=-4",
	}

	for _, cs := range tests {
		t.Run(cs, func(t *testing.T) {
			if err := NewConfig().Apply(cs); err == nil {
				t.Fatalf("expected error for %q", cs)
			}
		})
	}
}

func TestApplyEmpty(t *testing.T) {
	c := NewConfig()
	if err := c.Apply("  "); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff(NewConfig(), c); diff != "" {
		t.Fatalf("config changed (-want +got):\n%s", diff)
	}
}

func TestSaveLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "wcdirect")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	filename := filepath.Join(dir, "wcdirect.json")

	// Missing file yields defaults.
	c, err := Load(filename)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(NewConfig(), c); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}

	c.HostId = "11111111-2222-3333-4444-555555555555"
	c.TopicBufDepth = 7
	if err := c.Save(filename); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(filename)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Fatalf("reloaded config (-want +got):\n%s", diff)
	}
}

func TestLoadPartialFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "wcdirect")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	filename := filepath.Join(dir, "wcdirect.json")
	if err := ioutil.WriteFile(filename, []byte(`{"host_name": "lab"}`),
		0644); err != nil {

		t.Fatal(err)
	}

	c, err := Load(filename)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := NewConfig()
	want.HostName = "lab"
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}

	if err := ioutil.WriteFile(filename, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(filename); err == nil {
		t.Fatal("expected error for malformed file")
	}
}

func TestValidate(t *testing.T) {
	c := NewConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	c.HostId = ""
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for empty host id")
	}
}

func TestLines(t *testing.T) {
	c := NewConfig()
	c.HostName = "desk"

	lines := c.Lines()
	if len(lines) != 7 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[1] != "host_id="+HOST_ID_DFLT || lines[2] != "host_name=desk" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}
