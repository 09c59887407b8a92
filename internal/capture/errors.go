// Copyright (c) 2024 pcapgraph contributors. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.
package capture

import (
	"fmt"
	"time"

	"github.com/pocc/pcapgraph/internal/pcaperr"
)

func timestampOutOfRangeErr(path string, earliest time.Time) error {
	return pcaperr.New(pcaperr.TimestampOutOfRange, fmt.Errorf(
		"%s: earliest frame timestamp %s is before the 2000-01-01 floor", path, earliest))
}
