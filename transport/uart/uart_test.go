// lin-go
// SPDX-License-Identifier: LGPL-3.0-or-later

package uart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Equal(t, 3, opts.OpenRetries)
	assert.Equal(t, 100*time.Millisecond, opts.RetryDelay)
}

func TestOpen_UnknownPathFails(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.OpenRetries = 0

	_, err := Open("/dev/this-port-does-not-exist-lin-go", opts)
	assert.Error(t, err)
}
