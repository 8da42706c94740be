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

package daemon

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/path"
	"github.com/netsec-ethz/scion-host/go/lib/scion/pathcache"
)

// echoHandler is a grpc.UnknownServiceHandler standing in for the daemon:
// it decodes the raw request bytes this package's rawCodec produced and
// sends them straight back, so a round trip through Client exercises real
// wire marshaling without needing the daemon's out-of-scope protobuf schema.
func echoHandler(srv interface{}, stream grpc.ServerStream) error {
	var req rawBytes
	if err := stream.RecvMsg(&req); err != nil {
		return err
	}
	return stream.SendMsg(&req)
}

func dialEcho(t *testing.T) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer(grpc.UnknownServiceHandler(echoHandler))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithInsecure(),
		grpc.WithBlock(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// fakeCodec is a hand-written Codec: the request bytes it encodes name the
// operation, and it decodes by recognizing those same bytes echoed back,
// avoiding any dependency on the (out-of-scope) daemon wire schema.
type fakeCodec struct {
	paths []*path.Path
}

func (f *fakeCodec) EncodePathsRequest(src, dst addr.IsdAsn, flags PathReqFlags) ([]byte, error) {
	return []byte("paths"), nil
}
func (f *fakeCodec) EncodeAsInfoRequest(ia addr.IsdAsn) ([]byte, error) { return []byte("asinfo"), nil }
func (f *fakeCodec) EncodeServicesRequest() ([]byte, error)            { return []byte("services"), nil }
func (f *fakeCodec) EncodePortRangeRequest() ([]byte, error)           { return []byte("portrange"), nil }
func (f *fakeCodec) EncodeDRKeyHostASRequest(req DRKeyHostASRequest) ([]byte, error) {
	return []byte("drkey"), nil
}
func (f *fakeCodec) EncodeDRKeyASHostRequest(req DRKeyASHostRequest) ([]byte, error) {
	return []byte("drkey"), nil
}
func (f *fakeCodec) EncodeDRKeyHostHostRequest(req DRKeyHostHostRequest) ([]byte, error) {
	return []byte("drkey"), nil
}

func (f *fakeCodec) DecodePaths(src, dst addr.IsdAsn, data []byte) ([]*path.Path, error) {
	if string(data) != "paths" {
		return nil, errBoomf
	}
	return f.paths, nil
}
func (f *fakeCodec) DecodeAsInfo(data []byte) (AsInfo, error) {
	if string(data) != "asinfo" {
		return AsInfo{}, errBoomf
	}
	return AsInfo{Mtu: 1472}, nil
}
func (f *fakeCodec) DecodeServices(data []byte) (map[string][]string, error) {
	if string(data) != "services" {
		return nil, errBoomf
	}
	return map[string][]string{"CS": {"10.0.0.1:30252"}}, nil
}
func (f *fakeCodec) DecodePortRange(data []byte) (PortRange, error) {
	if string(data) != "portrange" {
		return PortRange{}, errBoomf
	}
	return PortRange{First: 30000, Last: 32767}, nil
}
func (f *fakeCodec) DecodeDRKey(data []byte) (DRKey, error) {
	if string(data) != "drkey" {
		return DRKey{}, errBoomf
	}
	return DRKey{Key: []byte{1, 2, 3, 4}}, nil
}

var errBoomf = errors.New("request bytes were not echoed back")

func mustParseIA(t *testing.T, s string) addr.IsdAsn {
	t.Helper()
	ia, err := addr.ParseIsdAsn(s)
	require.NoError(t, err)
	return ia
}

func TestClientRoundTripsThroughRealRPC(t *testing.T) {
	conn := dialEcho(t)
	want := []*path.Path{{MTU: 1472}}
	codec := &fakeCodec{paths: want}
	c := NewClient(conn, codec)

	src, dst := mustParseIA(t, "1-ff00:0:1"), mustParseIA(t, "1-ff00:0:2")

	paths, err := c.Paths(context.Background(), src, dst, FlagInterfaces)
	require.NoError(t, err)
	require.Equal(t, want, paths)

	info, err := c.AsInfo(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, uint32(1472), info.Mtu)

	services, err := c.Services(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.1:30252"}, services["CS"])

	pr, err := c.PortRange(context.Background())
	require.NoError(t, err)
	require.Equal(t, PortRange{First: 30000, Last: 32767}, pr)

	key, err := c.DRKeyHostAS(context.Background(), DRKeyHostASRequest{SrcIA: src, DstIA: dst})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, key.Key)
}

func TestClientQueryFuncSucceedsThroughRealRPC(t *testing.T) {
	conn := dialEcho(t)
	want := []*path.Path{{MTU: 1280}}
	codec := &fakeCodec{paths: want}
	c := NewClient(conn, codec)

	cache := pathcache.New(pathcache.DefaultParams())
	src, dst := mustParseIA(t, "1-ff00:0:1"), mustParseIA(t, "1-ff00:0:2")

	err := c.QueryFunc(FlagInterfaces)(cache, src, dst)
	require.NoError(t, err)
}
