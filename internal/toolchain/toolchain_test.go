// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package toolchain

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/pocc/pcapgraph/internal/pcaperr"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestDetectFailsFastOnMissingTool(t *testing.T) {
	original := RequiredTools
	defer func() { RequiredTools = original }()
	RequiredTools = []string{"pcapgraph-definitely-not-a-real-binary"}

	err := Detect(discardLogger())
	assert.Error(t, err)
	assert.Equal(t, pcaperr.MissingToolchain, pcaperr.Of(err))
}
