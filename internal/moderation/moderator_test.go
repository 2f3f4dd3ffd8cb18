package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerator_Censor(t *testing.T) {
	m, err := NewModerator([]string{"darn", "heck", " "}, '*')
	require.NoError(t, err)
	require.NotNil(t, m)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean text", in: "hello there", want: "hello there"},
		{name: "single word", in: "oh darn it", want: "oh **** it"},
		{name: "case insensitive", in: "DaRn and HECK", want: "**** and ****"},
		{name: "inside a longer word", in: "darned", want: "****ed"},
		{name: "multibyte text around a match", in: "café heck ☕", want: "café **** ☕"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Censor(tt.in))
		})
	}
}

func TestModerator_CustomCharacter(t *testing.T) {
	m, err := NewModerator([]string{"bad"}, '#')
	require.NoError(t, err)

	assert.Equal(t, "not ### at all", m.Censor("not bad at all"))
}

func TestNewModerator_NoWords(t *testing.T) {
	m, err := NewModerator([]string{"", "  "}, '*')

	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Equal(t, "anything goes", m.Censor("anything goes"))
}
