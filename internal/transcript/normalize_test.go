package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text", input: "hello world", want: "hello world"},
		{name: "collapses whitespace", input: "hello\n\t  world ", want: "hello world"},
		{name: "strips annotations", input: "[Music] so today [applause] we begin", want: "so today we begin"},
		{name: "annotation only", input: "[Music]", want: ""},
		{name: "unclosed bracket kept", input: "a [b", want: "a [b"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestRecordUsable(t *testing.T) {
	rec := &Record{VideoID: "abc", Text: strings.Repeat("a", MinViableLength)}
	assert.True(t, rec.Usable())

	rec.Text = strings.Repeat("a", MinViableLength-1)
	assert.False(t, rec.Usable())

	var nilRec *Record
	assert.False(t, nilRec.Usable())
}
