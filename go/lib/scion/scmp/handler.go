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

// Package scmp implements the chain-of-responsibility used to deliver
// inbound SCMP messages to the path cache and to application code.
package scmp

import (
	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
	"github.com/netsec-ethz/scion-host/go/lib/scion/spath"
)

// Message is the decoded SCMP message handed to every node in the chain:
// the message type/code and its type-specific body (see slayers.ScmpBody's
// concrete variants).
type Message struct {
	Type slayers.ScmpType
	Code uint8
	Body slayers.ScmpBody
}

// Handler is one node in the chain-of-responsibility. HandleSCMP returns
// false to halt propagation to subsequent nodes, true to let it continue.
// Implementations must not block and must not panic: this runs inline in
// the receive loop.
type Handler interface {
	HandleSCMP(from addr.SCIONAddress, path spath.RawPath, msg Message, payload []byte) bool
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(from addr.SCIONAddress, path spath.RawPath, msg Message, payload []byte) bool

func (f HandlerFunc) HandleSCMP(from addr.SCIONAddress, path spath.RawPath, msg Message, payload []byte) bool {
	return f(from, path, msg, payload)
}

// Chain dispatches an inbound SCMP message to each registered Handler in
// registration order, stopping at the first one that returns false. The
// path cache (component H) registers itself as a node; applications append
// their own nodes after it.
type Chain struct {
	handlers []Handler
}

// NewChain returns an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Append adds h to the end of the chain.
func (c *Chain) Append(h Handler) {
	c.handlers = append(c.handlers, h)
}

// Dispatch walks the chain from the head, calling each handler's
// HandleSCMP in turn. It stops as soon as a handler returns false.
func (c *Chain) Dispatch(from addr.SCIONAddress, path spath.RawPath, msg Message, payload []byte) {
	for _, h := range c.handlers {
		if !h.HandleSCMP(from, path, msg, payload) {
			return
		}
	}
}
