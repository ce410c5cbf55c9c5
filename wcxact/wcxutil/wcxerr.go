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
	"fmt"

	"github.com/pkg/errors"
)

// Publish to a topic nobody ever subscribed to.
type TopicNotFoundError struct {
	Text string
}

func NewTopicNotFoundError(text string) *TopicNotFoundError {
	return &TopicNotFoundError{
		Text: text,
	}
}

func FmtTopicNotFoundError(format string,
	args ...interface{}) *TopicNotFoundError {

	return NewTopicNotFoundError(fmt.Sprintf(format, args...))
}

func (e *TopicNotFoundError) Error() string {
	return e.Text
}

func IsTopicNotFound(err error) bool {
	_, ok := errors.Cause(err).(*TopicNotFoundError)
	return ok
}

// The session server stopped before (or while) the request was queued.
type ServerStoppedError struct {
	Text string
}

func NewServerStoppedError(text string) *ServerStoppedError {
	return &ServerStoppedError{
		Text: text,
	}
}

func (e *ServerStoppedError) Error() string {
	return e.Text
}

func IsServerStopped(err error) bool {
	_, ok := errors.Cause(err).(*ServerStoppedError)
	return ok
}

// A fragment budget too small to carry any payload once the envelope overhead
// is subtracted.
type FragBudgetError struct {
	Budget   int
	Overhead int
}

func NewFragBudgetError(budget int, overhead int) *FragBudgetError {
	return &FragBudgetError{
		Budget:   budget,
		Overhead: overhead,
	}
}

func (e *FragBudgetError) Error() string {
	return fmt.Sprintf("fragment budget %d does not exceed envelope "+
		"overhead %d", e.Budget, e.Overhead)
}

func IsFragBudget(err error) bool {
	_, ok := errors.Cause(err).(*FragBudgetError)
	return ok
}

// Failure to encode or decode an envelope.
type ChunkCodecError struct {
	Text string
}

func NewChunkCodecError(text string) *ChunkCodecError {
	return &ChunkCodecError{text}
}

func FmtChunkCodecError(format string, args ...interface{}) *ChunkCodecError {
	return NewChunkCodecError(fmt.Sprintf(format, args...))
}

func (e *ChunkCodecError) Error() string {
	return e.Text
}

func IsChunkCodec(err error) bool {
	if err == nil {
		return false
	}

	_, ok := errors.Cause(err).(*ChunkCodecError)
	return ok
}

// An application lookup (mobile, peer, publisher) found nothing.
type NotFoundError struct {
	Text string
}

func NewNotFoundError(text string) *NotFoundError {
	return &NotFoundError{text}
}

func FmtNotFoundError(format string, args ...interface{}) *NotFoundError {
	return NewNotFoundError(fmt.Sprintf(format, args...))
}

func (e *NotFoundError) Error() string {
	return e.Text
}

func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

// Receive on a subscriber that has been closed.
type SubscriberClosedError struct {
	Text string
}

func NewSubscriberClosedError() *SubscriberClosedError {
	return &SubscriberClosedError{"subscriber closed"}
}

func (e *SubscriberClosedError) Error() string {
	return e.Text
}

func IsSubscriberClosed(err error) bool {
	_, ok := errors.Cause(err).(*SubscriberClosedError)
	return ok
}
