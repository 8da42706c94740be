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

// Package serrors provides errors with context and wrapping, matching the
// shape used throughout this repository's error returns: a message, a chain
// of wrapped causes (errors.Unwrap/errors.Is/errors.As all work), and a set
// of key/value context pairs rendered at the tail of Error().
package serrors

import (
	"errors"
	"fmt"
	"strings"
)

// basicError is the concrete type returned by New, Wrap, WrapStr and WithCtx.
type basicError struct {
	msg   string
	cause error
	ctx   []ctxPair
}

type ctxPair struct {
	key string
	val interface{}
}

// New creates a new error with context, rooted (no cause).
func New(msg string, ctx ...interface{}) error {
	return &basicError{msg: msg, ctx: toPairs(ctx)}
}

// Wrap wraps cause with msg and context, preserving errors.Is/As access to cause.
func Wrap(msg string, cause error, ctx ...interface{}) error {
	return &basicError{msg: msg, cause: cause, ctx: toPairs(ctx)}
}

// WrapStr is Wrap with a plain string message; kept distinct because callers
// in this codebase use it when msg is always a literal, never formatted.
func WrapStr(msg string, cause error, ctx ...interface{}) error {
	return Wrap(msg, cause, ctx...)
}

// WithCtx annotates an existing error with additional context without
// changing its message; the resulting error still satisfies errors.Is/As
// against err.
func WithCtx(err error, ctx ...interface{}) error {
	return &basicError{msg: "", cause: err, ctx: toPairs(ctx)}
}

func toPairs(ctx []interface{}) []ctxPair {
	if len(ctx)%2 != 0 {
		ctx = append(ctx, "<missing>")
	}
	pairs := make([]ctxPair, 0, len(ctx)/2)
	for i := 0; i < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			key = fmt.Sprint(ctx[i])
		}
		pairs = append(pairs, ctxPair{key: key, val: ctx[i+1]})
	}
	return pairs
}

func (e *basicError) Error() string {
	var b strings.Builder
	if e.msg != "" {
		b.WriteString(e.msg)
	}
	if e.cause != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.cause.Error())
	}
	for _, p := range e.ctx {
		fmt.Fprintf(&b, " [%s=%v]", p.key, p.val)
	}
	if b.Len() == 0 {
		return "serrors: unknown error"
	}
	return b.String()
}

func (e *basicError) Unwrap() error {
	return e.cause
}

// Is reports whether target is the sentinel this error (or its chain) wraps.
// Provided explicitly so a *basicError built with no cause (New) still
// compares reference-equal to itself, matching errors.New semantics.
func (e *basicError) Is(target error) bool {
	return e == target
}

// List aggregates multiple errors collected while validating independent
// fields, flushed to a single error via ToError.
type List []error

// ToError returns nil if the list is empty, the sole error if there is
// exactly one, or a combined error otherwise.
func (l List) ToError() error {
	switch len(l) {
	case 0:
		return nil
	case 1:
		return l[0]
	default:
		msgs := make([]string, len(l))
		for i, err := range l {
			msgs[i] = err.Error()
		}
		return errors.New(strings.Join(msgs, "; "))
	}
}
