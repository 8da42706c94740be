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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/snet"
)

// printer renders a human-readable dump of packets this command sends or
// receives, colorizing field names only when writing to a real terminal.
type printer struct {
	w       io.Writer
	field   func(format string, a ...interface{}) string
	enabled bool
}

// newPrinter builds a printer for mode ("auto", "always", "never") writing
// to w; "auto" colorizes only when w is a terminal (checked via go-isatty
// when w is an *os.File).
func newPrinter(w io.Writer, mode string) *printer {
	enabled := mode == "always"
	if mode == "auto" {
		if f, ok := w.(*os.File); ok {
			enabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	c := color.New(color.FgCyan, color.Bold)
	if enabled {
		c.EnableColor()
	}
	field := c.SprintfFunc()
	return &printer{w: w, field: field, enabled: enabled}
}

func (p *printer) line(name string, format string, a ...interface{}) {
	if p.enabled {
		fmt.Fprintf(p.w, "  %s: %s\n", p.field(name), fmt.Sprintf(format, a...))
		return
	}
	fmt.Fprintf(p.w, "  %s: %s\n", name, fmt.Sprintf(format, a...))
}

// dumpSent prints a short summary of one outbound packet.
func (p *printer) dumpSent(local, remote addr.Endpoint, payload []byte) {
	fmt.Fprintln(p.w, "sent packet")
	p.line("src", "%s", local)
	p.line("dst", "%s", remote)
	p.line("payload", "%d bytes", len(payload))
}

// dumpReceived prints a short summary of one inbound packet.
func (p *printer) dumpReceived(res *snet.UnpackResult) {
	fmt.Fprintln(p.w, "received packet")
	p.line("from", "%s", res.From)
	p.line("path type", "%v", res.Path.Type)
	p.line("payload", "%d bytes: %q", len(res.Payload), res.Payload)
}

// dumpScmp prints a short summary of a received SCMP message.
func (p *printer) dumpScmp(from addr.SCIONAddress, scmpType interface{}, code uint8) {
	fmt.Fprintln(p.w, "received SCMP")
	p.line("from", "%s", from)
	p.line("type", "%v", scmpType)
	p.line("code", "%d", code)
}
