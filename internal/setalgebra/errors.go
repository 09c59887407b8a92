// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package setalgebra

import (
	"fmt"

	"github.com/pocc/pcapgraph/internal/pcaperr"
)

func insufficientInputsErr(n int) error {
	return pcaperr.New(pcaperr.InsufficientInputs, fmt.Errorf("operation requires at least 2 inputs, got %d", n))
}

func emptyIntersectionErr() error {
	return pcaperr.New(pcaperr.EmptyIntersection, fmt.Errorf("bounded intersection requires a nonempty plain intersection"))
}

func boundaryNotFoundErr(input string, which string) error {
	return pcaperr.New(pcaperr.BoundaryNotFound, fmt.Errorf("%s boundary of the intersection not found in %s", which, input))
}
