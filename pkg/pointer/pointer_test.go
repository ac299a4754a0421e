// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/mediagate/pkg/pointer"
)

func TestPointer(t *testing.T) {
	width := pointer.To(300)

	assert.Equal(t, 300, pointer.Val(width))
	assert.Equal(t, 0, pointer.Val[int](nil))
	assert.Equal(t, 90, pointer.Fallback(nil, 90))
	assert.Equal(t, 300, pointer.Fallback(width, 90))

	assert.True(t, pointer.Absent[int](nil, nil))
	assert.True(t, pointer.Absent[int]())
	assert.False(t, pointer.Absent(nil, width))
}
