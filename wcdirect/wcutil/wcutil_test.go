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

package wcutil

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

func TestErrorCausedBy(t *testing.T) {
	wrapped := errors.Wrap(errors.Wrap(context.Canceled, "advertise"), "serve")

	if !ErrorCausedBy(wrapped, context.Canceled) {
		t.Fatal("wrapped cause not found")
	}
	if ErrorCausedBy(wrapped, context.DeadlineExceeded) {
		t.Fatal("unrelated cause reported")
	}
	if !ErrorCausedBy(context.Canceled, context.Canceled) {
		t.Fatal("bare cause not found")
	}
}
