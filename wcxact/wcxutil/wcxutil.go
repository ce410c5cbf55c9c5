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

package wcxutil

import (
	"encoding/hex"

	log "github.com/sirupsen/logrus"
)

var Debug bool

var logFormatter = log.TextFormatter{
	FullTimestamp:   true,
	TimestampFormat: "2006-01-02 15:04:05.999",
	ForceColors:     true,
}

func SetLogLevel(level log.Level) {
	log.SetLevel(level)
	log.SetFormatter(&logFormatter)
}

func Assert(cond bool) {
	if Debug && !cond {
		panic("Failed assertion")
	}
}

// Hex dump at trace level.
func TraceBuf(title string, b []byte) {
	if log.IsLevelEnabled(log.TraceLevel) {
		log.Tracef("%s (%d bytes):\n%s", title, len(b), hex.Dump(b))
	}
}
