// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package run

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocc/pcapgraph/internal/normalize"
	"github.com/pocc/pcapgraph/internal/pcapio"
	"github.com/pocc/pcapgraph/internal/setalgebra"
)

func TestOperationString(t *testing.T) {
	assert.Equal(t, "union", Union.String())
	assert.Equal(t, "inverse_bounded_intersection", InverseBoundedIntersection.String())
	assert.Equal(t, "unknown", Operation(99).String())
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func frame(tag byte, sec int64) pcapio.Frame {
	d := make([]byte, 15)
	d[12], d[13] = 0x08, 0x00
	d[14] = tag
	return pcapio.Frame{Data: d, Timestamp: time.Unix(sec, 0).UTC()}
}

func derived(name string, frames ...pcapio.Frame) *setalgebra.DerivedCapture {
	return &setalgebra.DerivedCapture{Name: name, LinkType: pcapio.LinkTypeEthernet, Frames: frames}
}

func TestRunOneDispatchesEachOperation(t *testing.T) {
	e := setalgebra.New(normalize.Identity, discardLogger())
	a := derived("a", frame(1, 0), frame(2, 1))
	b := derived("b", frame(2, 1))
	inputs := []setalgebra.CaptureLike{a, b}

	for _, op := range []Operation{Union, Intersection, Difference, SymmetricDifference, BoundedIntersection, InverseBoundedIntersection} {
		out, err := runOne(e, op, inputs)
		require.NoError(t, err, op)
		assert.NotEmpty(t, out, op)
	}
}
