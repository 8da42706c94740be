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

// Package scerr holds the stable sentinel errors shared across every
// package in this module. Callers pattern-match against these with
// errors.Is; the rich, human-readable detail is attached separately via
// serrors.Wrap at the point of failure.
package scerr

import "errors"

var (
	ErrCancelled       = errors.New("operation cancelled")
	ErrPending         = errors.New("operation pending")
	ErrScmpReceived    = errors.New("scmp message received")
	ErrLogicError      = errors.New("logic error")
	ErrNotImplemented  = errors.New("not implemented")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrSyntaxError     = errors.New("syntax error")
	ErrBufferTooSmall  = errors.New("buffer too small")
	ErrPacketTooBig    = errors.New("packet too big")
	ErrRequiresZone    = errors.New("address requires a zone identifier")
	ErrNoLocalHostAddr = errors.New("no local host address available")
	ErrInvalidPacket   = errors.New("invalid packet")
	ErrChecksumError   = errors.New("checksum error")
	ErrDstAddrMismatch = errors.New("destination address mismatch")
	ErrSrcAddrMismatch = errors.New("source address mismatch")
	ErrWouldBlock      = errors.New("operation would block")
)
