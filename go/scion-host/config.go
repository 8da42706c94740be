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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/netsec-ethz/scion-host/go/lib/scion/pathcache"
)

// Config holds everything wired in from a YAML file, environment variables
// (SCION_HOST_* prefix) and command-line flags, in that order of increasing
// precedence, following viper's usual layering.
type Config struct {
	// Local is this host's own endpoint, "<isd-asn>,<host>:<port>".
	Local string
	// TrafficClass is stamped on every packet this process sends.
	TrafficClass uint8
	// VerifyChecksum toggles inbound L4 checksum verification.
	VerifyChecksum bool
	// PathCache holds the refresh-scheduling parameters for the local path
	// cache.
	PathCache pathcache.Params
	// MetricsAddr, if non-empty, serves Prometheus metrics on this address.
	MetricsAddr string
	// Color controls colorized human-readable output: "auto" (the
	// default) colorizes only when stdout is a terminal, "always", or
	// "never".
	Color string
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "path to a YAML configuration file")
	cmd.PersistentFlags().String("local", "", "local endpoint, <isd-asn>,<host>:<port>")
	cmd.PersistentFlags().Uint8("traffic-class", 0, "traffic class stamped on outbound packets")
	cmd.PersistentFlags().Bool("verify-checksum", true, "verify inbound L4 checksums")
	cmd.PersistentFlags().String("metrics-addr", "", "address to serve Prometheus metrics on, empty disables")
	cmd.PersistentFlags().String("color", "auto", `colorize output: "auto", "always", or "never"`)
	cmd.PersistentFlags().Duration("path-cache-min-lifetime", pathcache.DefaultParams().MinAcceptedLifetime,
		"shortest remaining path lifetime the cache accepts")
	cmd.PersistentFlags().Duration("path-cache-refresh-at-remaining", pathcache.DefaultParams().RefreshAtRemaining,
		"how far ahead of expiry a path refresh is scheduled")
	cmd.PersistentFlags().Duration("path-cache-refresh-interval", pathcache.DefaultParams().RefreshInterval,
		"maximum interval between path refreshes")
}

// loadConfig binds cmd's flags over environment variables over an optional
// YAML config file, in that order of increasing precedence.
func loadConfig(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("scion_host")
	v.AutomaticEnv()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return Config{}, err
	}

	return Config{
		Local:          v.GetString("local"),
		TrafficClass:   uint8(v.GetUint("traffic-class")),
		VerifyChecksum: v.GetBool("verify-checksum"),
		MetricsAddr:    v.GetString("metrics-addr"),
		Color:          v.GetString("color"),
		PathCache: pathcache.Params{
			MinAcceptedLifetime: v.GetDuration("path-cache-min-lifetime"),
			RefreshAtRemaining:  v.GetDuration("path-cache-refresh-at-remaining"),
			RefreshInterval:     v.GetDuration("path-cache-refresh-interval"),
		},
	}, nil
}
