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

// Package daemon implements the boundary to the SCION daemon: a thin gRPC
// client that requests paths, AS info, service URIs, the end-host SCION
// port range and DRKeys, translates the replies into this library's own
// types, and (for path requests) stores the result in a path cache. The
// daemon's wire schema is out of scope for this package; callers inject a
// Decoder bound to whatever protobuf messages their daemon actually speaks,
// and this client carries only the raw request/response bytes across the
// connection.
package daemon

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/path"
	"github.com/netsec-ethz/scion-host/go/lib/scion/pathcache"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scerr"
	"github.com/netsec-ethz/scion-host/go/lib/serrors"
)

// PathReqFlags controls what a Paths request asks the daemon for.
type PathReqFlags uint32

const (
	// FlagRefresh asks the daemon to fetch paths from path servers instead
	// of replying from its own cache.
	FlagRefresh PathReqFlags = 1 << iota
	// FlagHidden requests hidden paths.
	FlagHidden
	// FlagInterfaces requests the per-AS interface-ID attribute.
	FlagInterfaces
	// FlagHopMetadata requests the per-AS router-metadata attribute.
	FlagHopMetadata
	// FlagLinkMetadata requests the per-link metadata attribute.
	FlagLinkMetadata
	// FlagAllMetadata requests every metadata attribute.
	FlagAllMetadata = FlagInterfaces | FlagHopMetadata | FlagLinkMetadata
)

// Has reports whether bit is set.
func (f PathReqFlags) Has(bit PathReqFlags) bool { return f&bit != 0 }

// AsInfo is the daemon's reply to an AS-info request.
type AsInfo struct {
	IsdAsn addr.IsdAsn
	Core   bool
	Mtu    uint32
}

// PortRange is the inclusive range of UDP ports the local AS dispatches
// SCION traffic on.
type PortRange struct {
	First uint16
	Last  uint16
}

// DRKeyProtocol selects the derivation context for a DRKey request.
type DRKeyProtocol uint16

const (
	DRKeyGeneric DRKeyProtocol = 0
	DRKeySCMP    DRKeyProtocol = 1
)

// DRKey is one derived key and its validity epoch.
type DRKey struct {
	Key        []byte
	EpochBegin time.Time
	EpochEnd   time.Time
}

// DRKeyHostASRequest requests a Host-AS key: one bound to a specific source
// host but every host of the destination AS.
type DRKeyHostASRequest struct {
	ValTime  time.Time
	Protocol DRKeyProtocol
	SrcIA    addr.IsdAsn
	DstIA    addr.IsdAsn
	SrcHost  string
}

// DRKeyASHostRequest requests an AS-Host key: the mirror image of
// DRKeyHostASRequest, bound to a specific destination host.
type DRKeyASHostRequest struct {
	ValTime  time.Time
	Protocol DRKeyProtocol
	SrcIA    addr.IsdAsn
	DstIA    addr.IsdAsn
	DstHost  string
}

// DRKeyHostHostRequest requests a Host-Host key, bound to one specific
// source host and one specific destination host.
type DRKeyHostHostRequest struct {
	ValTime  time.Time
	Protocol DRKeyProtocol
	SrcIA    addr.IsdAsn
	DstIA    addr.IsdAsn
	SrcHost  string
	DstHost  string
}

// Decoder translates raw daemon RPC response payloads into this package's
// types. Implementations are bound to a concrete wire schema by the caller;
// this package never parses the bytes itself.
type Decoder interface {
	DecodePaths(src, dst addr.IsdAsn, data []byte) ([]*path.Path, error)
	DecodeAsInfo(data []byte) (AsInfo, error)
	DecodeServices(data []byte) (map[string][]string, error)
	DecodePortRange(data []byte) (PortRange, error)
	DecodeDRKey(data []byte) (DRKey, error)
}

// Encoder translates this package's request types into raw daemon RPC
// request payloads, the inverse of Decoder.
type Encoder interface {
	EncodePathsRequest(src, dst addr.IsdAsn, flags PathReqFlags) ([]byte, error)
	EncodeAsInfoRequest(ia addr.IsdAsn) ([]byte, error)
	EncodeServicesRequest() ([]byte, error)
	EncodePortRangeRequest() ([]byte, error)
	EncodeDRKeyHostASRequest(req DRKeyHostASRequest) ([]byte, error)
	EncodeDRKeyASHostRequest(req DRKeyASHostRequest) ([]byte, error)
	EncodeDRKeyHostHostRequest(req DRKeyHostHostRequest) ([]byte, error)
}

// Codec bundles the Encoder/Decoder pair a Client needs to speak to one
// concrete daemon wire schema.
type Codec interface {
	Encoder
	Decoder
}

// RPC method names, matching the daemon's gRPC service layout.
const (
	methodPaths         = "/scion_host.daemon.v1.DaemonService/Paths"
	methodAsInfo        = "/scion_host.daemon.v1.DaemonService/AS"
	methodServices      = "/scion_host.daemon.v1.DaemonService/Services"
	methodPortRange     = "/scion_host.daemon.v1.DaemonService/PortRange"
	methodDRKeyHostAS   = "/scion_host.daemon.v1.DaemonService/DRKeyHostAS"
	methodDRKeyASHost   = "/scion_host.daemon.v1.DaemonService/DRKeyASHost"
	methodDRKeyHostHost = "/scion_host.daemon.v1.DaemonService/DRKeyHostHost"
)

// Client is a synchronous SCION daemon client: it owns a gRPC connection
// and a Codec, and exposes the daemon's operations in terms of this
// library's own types rather than raw bytes.
type Client struct {
	conn  *grpc.ClientConn
	codec Codec
	log   *zap.Logger
}

// Option configures a Client at construction.
type Option func(*Client)

// WithLogger attaches a zap logger; nil (the default) disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient returns a Client issuing RPCs over conn, translated through
// codec. The caller owns conn's lifecycle (dialing and closing it).
func NewClient(conn *grpc.ClientConn, codec Codec, opts ...Option) *Client {
	c := &Client{conn: conn, codec: codec, log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

func (c *Client) call(ctx context.Context, method string, req []byte) ([]byte, error) {
	args := rawBytes(req)
	var reply rawBytes
	if err := c.conn.Invoke(ctx, method, &args, &reply, grpc.CallContentSubtype(rawCodecName)); err != nil {
		return nil, serrors.Wrap("daemon RPC failed", err, "method", method)
	}
	return reply, nil
}

// Paths requests SCION paths between src and dst, decodes the reply into
// Path objects (populated per flags) and returns them; it does not itself
// touch a path cache, so callers compose it with QueryFunc when driving a
// pathcache.Cache.
func (c *Client) Paths(ctx context.Context, src, dst addr.IsdAsn, flags PathReqFlags) ([]*path.Path, error) {
	req, err := c.codec.EncodePathsRequest(src, dst, flags)
	if err != nil {
		return nil, serrors.Wrap("failed to encode paths request", err, "src", src, "dst", dst)
	}
	reply, err := c.call(ctx, methodPaths, req)
	if err != nil {
		return nil, err
	}
	paths, err := c.codec.DecodePaths(src, dst, reply)
	if err != nil {
		return nil, serrors.Wrap("failed to decode paths reply", err, "src", src, "dst", dst)
	}
	c.log.Debug("fetched paths from daemon", zap.Stringer("src", src), zap.Stringer("dst", dst),
		zap.Int("count", len(paths)))
	return paths, nil
}

// QueryFunc adapts Paths into a pathcache.QueryFunc bound to flags: every
// refresh the cache triggers fetches fresh paths and stores them, matching
// QueryFunc's "populate via cache.Store and return nil" contract.
func (c *Client) QueryFunc(flags PathReqFlags) pathcache.QueryFunc {
	return func(cache *pathcache.Cache, src, dst addr.IsdAsn) error {
		paths, err := c.Paths(context.Background(), src, dst, flags)
		if err != nil {
			return err
		}
		cache.Store(src, dst, paths)
		return nil
	}
}

// AsInfo requests information about an AS; the unspecified ISD-AS requests
// information about the daemon's own AS.
func (c *Client) AsInfo(ctx context.Context, ia addr.IsdAsn) (AsInfo, error) {
	req, err := c.codec.EncodeAsInfoRequest(ia)
	if err != nil {
		return AsInfo{}, serrors.Wrap("failed to encode AS-info request", err, "ia", ia)
	}
	reply, err := c.call(ctx, methodAsInfo, req)
	if err != nil {
		return AsInfo{}, err
	}
	info, err := c.codec.DecodeAsInfo(reply)
	if err != nil {
		return AsInfo{}, serrors.Wrap("failed to decode AS-info reply", err, "ia", ia)
	}
	return info, nil
}

// Services requests the mapping from SCION service names (CS, DS, ...) to
// their underlay URIs.
func (c *Client) Services(ctx context.Context) (map[string][]string, error) {
	req, err := c.codec.EncodeServicesRequest()
	if err != nil {
		return nil, serrors.Wrap("failed to encode services request", err)
	}
	reply, err := c.call(ctx, methodServices, req)
	if err != nil {
		return nil, err
	}
	services, err := c.codec.DecodeServices(reply)
	if err != nil {
		return nil, serrors.Wrap("failed to decode services reply", err)
	}
	return services, nil
}

// PortRange requests the inclusive UDP port range end hosts in the local AS
// dispatch SCION traffic on.
func (c *Client) PortRange(ctx context.Context) (PortRange, error) {
	req, err := c.codec.EncodePortRangeRequest()
	if err != nil {
		return PortRange{}, serrors.Wrap("failed to encode port-range request", err)
	}
	reply, err := c.call(ctx, methodPortRange, req)
	if err != nil {
		return PortRange{}, err
	}
	pr, err := c.codec.DecodePortRange(reply)
	if err != nil {
		return PortRange{}, serrors.Wrap("failed to decode port-range reply", err)
	}
	return pr, nil
}

// DRKeyHostAS requests a Host-AS DRKey.
func (c *Client) DRKeyHostAS(ctx context.Context, req DRKeyHostASRequest) (DRKey, error) {
	raw, err := c.codec.EncodeDRKeyHostASRequest(req)
	if err != nil {
		return DRKey{}, serrors.Wrap("failed to encode Host-AS DRKey request", err)
	}
	reply, err := c.call(ctx, methodDRKeyHostAS, raw)
	if err != nil {
		return DRKey{}, err
	}
	return c.decodeDRKey(reply, "Host-AS")
}

// DRKeyASHost requests an AS-Host DRKey.
func (c *Client) DRKeyASHost(ctx context.Context, req DRKeyASHostRequest) (DRKey, error) {
	raw, err := c.codec.EncodeDRKeyASHostRequest(req)
	if err != nil {
		return DRKey{}, serrors.Wrap("failed to encode AS-Host DRKey request", err)
	}
	reply, err := c.call(ctx, methodDRKeyASHost, raw)
	if err != nil {
		return DRKey{}, err
	}
	return c.decodeDRKey(reply, "AS-Host")
}

// DRKeyHostHost requests a Host-Host DRKey.
func (c *Client) DRKeyHostHost(ctx context.Context, req DRKeyHostHostRequest) (DRKey, error) {
	raw, err := c.codec.EncodeDRKeyHostHostRequest(req)
	if err != nil {
		return DRKey{}, serrors.Wrap("failed to encode Host-Host DRKey request", err)
	}
	reply, err := c.call(ctx, methodDRKeyHostHost, raw)
	if err != nil {
		return DRKey{}, err
	}
	return c.decodeDRKey(reply, "Host-Host")
}

func (c *Client) decodeDRKey(reply []byte, kind string) (DRKey, error) {
	key, err := c.codec.DecodeDRKey(reply)
	if err != nil {
		return DRKey{}, serrors.Wrap("failed to decode DRKey reply", err, "kind", kind)
	}
	return key, nil
}

// rawBytes is a placeholder gRPC message carrying a daemon RPC's request or
// response payload unchanged; rawCodec (de)serializes it as a no-op so
// Client can issue RPCs without the daemon's protobuf schema.
type rawBytes []byte

const rawCodecName = "scion-host-raw"

type rawCodec struct{}

func (rawCodec) Marshal(v interface{}) ([]byte, error) {
	b, ok := v.(*rawBytes)
	if !ok {
		return nil, serrors.Wrap("raw codec given unexpected message type", scerr.ErrLogicError,
			"type", fmt.Sprintf("%T", v))
	}
	return *b, nil
}

func (rawCodec) Unmarshal(data []byte, v interface{}) error {
	b, ok := v.(*rawBytes)
	if !ok {
		return serrors.Wrap("raw codec given unexpected message type", scerr.ErrLogicError,
			"type", fmt.Sprintf("%T", v))
	}
	*b = append((*b)[:0], data...)
	return nil
}

func (rawCodec) Name() string { return rawCodecName }

func init() {
	encoding.RegisterCodec(rawCodec{})
}
