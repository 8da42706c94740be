// Copyright 2020 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bitstream

import (
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

// maxFrames bounds how many nested failure frames a TraceError retains,
// matching the reference implementation's capped backtrace.
const maxFrames = 12

// ErrorContext is the sink every stream operation reports failures to.
// Two implementations exist: NullError, which discards everything at zero
// cost, and a *TraceError, which accumulates a bounded backtrace for
// debugging. Passing the same ErrorContext into nested Serialize calls lets
// an inner failure annotate an outer one without the caller formatting a
// message on every frame.
type ErrorContext interface {
	record(msg string, ctx []interface{})
}

type nullContext struct{}

func (nullContext) record(string, []interface{}) {}

// NullError is the zero-cost error context. Use it on the hot path once a
// caller has already decided it will not inspect failure detail beyond the
// boolean return value.
var NullError ErrorContext = nullContext{}

type frame struct {
	msg string
	ctx []interface{}
}

// TraceError collects up to 12 nested failure frames, most-specific first,
// and can be turned into a single wrapped error on demand.
type TraceError struct {
	frames []frame
}

// NewTraceError returns an empty backtrace-collecting error context.
func NewTraceError() *TraceError {
	return &TraceError{}
}

func (t *TraceError) record(msg string, ctx []interface{}) {
	if len(t.frames) >= maxFrames {
		return
	}
	t.frames = append(t.frames, frame{msg: msg, ctx: ctx})
}

// Err renders the collected frames into a single wrapped error, or nil if
// nothing was recorded.
func (t *TraceError) Err() error {
	if len(t.frames) == 0 {
		return nil
	}
	var err error
	for i := len(t.frames) - 1; i >= 0; i-- {
		f := t.frames[i]
		if err == nil {
			err = serrors.New(f.msg, f.ctx...)
		} else {
			err = serrors.Wrap(f.msg, err, f.ctx...)
		}
	}
	return err
}

func report(ec ErrorContext, msg string, ctx ...interface{}) bool {
	ec.record(msg, ctx)
	return false
}
