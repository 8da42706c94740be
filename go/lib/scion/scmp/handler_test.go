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

package scmp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netsec-ethz/scion-host/go/lib/scion/addr"
	"github.com/netsec-ethz/scion-host/go/lib/scion/scmp"
	"github.com/netsec-ethz/scion-host/go/lib/scion/spath"
)

func TestChainDispatchesEveryNodeWhenNoneHalt(t *testing.T) {
	var called []int
	c := scmp.NewChain()
	for i := 0; i < 3; i++ {
		i := i
		c.Append(scmp.HandlerFunc(func(addr.SCIONAddress, spath.RawPath, scmp.Message, []byte) bool {
			called = append(called, i)
			return true
		}))
	}
	c.Dispatch(addr.SCIONAddress{}, spath.RawPath{}, scmp.Message{}, nil)
	require.Equal(t, []int{0, 1, 2}, called)
}

func TestChainStopsAtFirstFalse(t *testing.T) {
	var called []int
	c := scmp.NewChain()
	c.Append(scmp.HandlerFunc(func(addr.SCIONAddress, spath.RawPath, scmp.Message, []byte) bool {
		called = append(called, 0)
		return false
	}))
	c.Append(scmp.HandlerFunc(func(addr.SCIONAddress, spath.RawPath, scmp.Message, []byte) bool {
		called = append(called, 1)
		return true
	}))
	c.Dispatch(addr.SCIONAddress{}, spath.RawPath{}, scmp.Message{}, nil)
	require.Equal(t, []int{0}, called)
}
