package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOriginPolicy(t *testing.T) {
	policy, kept := newOriginPolicy([]string{
		"http://localhost:8080",
		"HTTP://LOCALHOST:8080/",
		"https://chat.example/app",
		"chat.example",
	})
	require.Equal(t, []string{"http://localhost:8080", "https://chat.example"}, kept)

	cases := []struct {
		origin string
		want   bool
	}{
		{"http://localhost:8080", true},
		{"http://LocalHost:8080", true},
		{"https://chat.example", true},
		{"http://chat.example", false},
		{"http://localhost:9090", false},
		{"", false},
		{"null", false},
	}
	for _, tc := range cases {
		require.Equalf(t, tc.want, policy.allows(tc.origin), "origin %q", tc.origin)
	}
}

func TestOriginPolicy_Wildcard(t *testing.T) {
	policy, kept := newOriginPolicy([]string{" * "})

	require.Equal(t, []string{"*"}, kept)
	require.True(t, policy.allows("https://anywhere.example"))
	require.False(t, policy.allows(""))
}
