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
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/metrics"
	"github.com/netsec-ethz/scion-host/go/lib/scion/slayers"
	"github.com/netsec-ethz/scion-host/go/lib/scion/snet"
	"github.com/netsec-ethz/scion-host/go/lib/scion/spath"
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

func newSendCmd() *cobra.Command {
	var remote, underlay string

	cmd := &cobra.Command{
		Use:   "send <payload>",
		Short: "Send one SCION/UDP packet to a remote endpoint over the local AS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runSend(cfg, remote, underlay, []byte(args[0]))
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "remote endpoint, <isd-asn>,<host>:<port>")
	cmd.Flags().StringVar(&underlay, "underlay", "", "underlay UDP address of the next hop, <host>:<port>")
	_ = cmd.MarkFlagRequired("remote")
	_ = cmd.MarkFlagRequired("underlay")

	return cmd
}

func runSend(cfg Config, remoteStr, underlayStr string, payload []byte) error {
	local, err := addr.ParseEndpoint(cfg.Local)
	if err != nil {
		return serrors.Wrap("invalid --local endpoint", err, "value", cfg.Local)
	}
	remote, err := addr.ParseEndpoint(remoteStr)
	if err != nil {
		return serrors.Wrap("invalid --remote endpoint", err, "value", remoteStr)
	}
	underlayAddr, err := net.ResolveUDPAddr("udp", underlayStr)
	if err != nil {
		return serrors.Wrap("invalid --underlay address", err, "value", underlayStr)
	}

	reg := promRegistererFor(cfg.MetricsAddr)
	pk := snet.NewPackager(
		snet.WithTrafficClass(cfg.TrafficClass),
		snet.WithChecksumVerification(cfg.VerifyChecksum),
		snet.WithPacketMetrics(metrics.NewPromPacketMetrics(reg)),
	)
	if err := pk.SetLocalEp(local); err != nil {
		return err
	}

	conn, err := net.DialUDP("udp", nil, underlayAddr)
	if err != nil {
		return serrors.Wrap("failed to dial underlay", err, "addr", underlayStr)
	}
	defer conn.Close()

	hc := &snet.HeaderCache{}
	udp := &slayers.UDP{}
	if err := pk.Pack(hc, remote, spath.RawPath{Type: slayers.PathTypeEmpty}, nil, nil,
		slayers.L4UDP, udp, payload); err != nil {
		return serrors.Wrap("failed to pack packet", err)
	}
	pkt := append(append([]byte(nil), hc.Bytes()...), payload...)
	if _, err := conn.Write(pkt); err != nil {
		return serrors.Wrap("failed to write packet to underlay", err)
	}

	newPrinter(os.Stdout, cfg.Color).dumpSent(local, remote, payload)
	return nil
}
