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
	"errors"
	"net"
	"net/netip"
	"os"

	"github.com/spf13/cobra"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/metrics"
	"github.com/netsec-ethz/scion-host/go/lib/scion/pathcache"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scmp"
	"github.com/netsec-ethz/scion-host/go/lib/scion/snet"
	"github.com/netsec-ethz/scion-host/go/lib/scion/spath"
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

func newListenCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive SCION/UDP packets on the local underlay socket and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runListen(cfg, count)
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "stop after this many packets, 0 runs forever")

	return cmd
}

func runListen(cfg Config, count int) error {
	local, err := addr.ParseEndpoint(cfg.Local)
	if err != nil {
		return serrors.Wrap("invalid --local endpoint", err, "value", cfg.Local)
	}
	if !local.IsFullySpecified() {
		return serrors.New("--local endpoint must carry a host and port to listen on")
	}

	reg := promRegistererFor(cfg.MetricsAddr)
	pk := snet.NewPackager(
		snet.WithChecksumVerification(cfg.VerifyChecksum),
		snet.WithPacketMetrics(metrics.NewPromPacketMetrics(reg)),
	)
	if err := pk.SetLocalEp(local); err != nil {
		return err
	}

	cache := pathcache.New(cfg.PathCache, pathcache.WithMetrics(metrics.NewPromPathCacheMetrics(reg)))
	chain := scmp.NewChain()
	chain.Append(scmp.HandlerFunc(cache.HandleSCMP))

	udpAddr := &net.UDPAddr{IP: net.IP(local.Host.Bytes()), Port: int(local.Port)}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return serrors.Wrap("failed to open underlay listener", err, "local", local)
	}
	defer conn.Close()

	p := newPrinter(os.Stdout, cfg.Color)

	scmpCb := func(from addr.SCIONAddress, path spath.RawPath, msg scmp.Message, payload []byte) bool {
		p.dumpScmp(from, msg.Type, msg.Code)
		chain.Dispatch(from, path, msg, payload)
		return true
	}

	buf := make([]byte, 9000)
	for i := 0; count == 0 || i < count; i++ {
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return serrors.Wrap("failed to read from underlay", err)
		}

		underlaySource, ok := netip.AddrFromSlice(raddr.IP)
		if !ok {
			p.line("error", "could not parse underlay source %s", raddr)
			continue
		}

		res, err := pk.Unpack(buf[:n], underlaySource, nil, nil, scmpCb)
		switch {
		case errors.Is(err, scerr.ErrScmpReceived):
			continue
		case err != nil:
			p.line("error", "failed to unpack inbound packet: %s", err)
			continue
		}
		p.dumpReceived(res)
	}
	return nil
}
