package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenSRT(t *testing.T) {
	srt := `1
00:00:00,000 --> 00:00:02,500
so today we are going

2
00:00:02,500 --> 00:00:05,000
so today we are going

3
00:00:05,000 --> 00:00:08,000
to talk about caching
`
	assert.Equal(t, "so today we are going to talk about caching", flattenSRT(srt))
}

func TestFlattenSRT_Empty(t *testing.T) {
	assert.Equal(t, "", flattenSRT(""))
}

func TestIsCueIndex(t *testing.T) {
	assert.True(t, isCueIndex("12"))
	assert.False(t, isCueIndex("12a"))
	assert.False(t, isCueIndex("hello"))
	assert.False(t, isCueIndex(""))
}
