package engine

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
)

func TestHostSetMatches(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"doubleclick.net", true},
		{"stats.g.doubleclick.net", true},
		{"PAGEAD2.GoogleSyndication.com", true},
		{"www.google-analytics.com.", true},
		{"example.com", false},
		{"notdoubleclick.net", false},
		{"net", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, trackerHosts.matches(tt.host))
		})
	}
}

func TestBlockPolicy(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		p := newBlockPolicy(nil, false)
		assert.True(t, p.empty())
		assert.False(t, p.blocks(proto.NetworkResourceTypeImage, "https://cdn.example.com/a.png"))
	})

	t.Run("scripts are never blockable", func(t *testing.T) {
		p := newBlockPolicy([]string{"Script", "Document"}, false)
		assert.True(t, p.empty())
	})

	t.Run("resource types are case insensitive", func(t *testing.T) {
		p := newBlockPolicy([]string{"Image", " font ", "bogus"}, false)
		assert.False(t, p.empty())
		assert.True(t, p.blocks(proto.NetworkResourceTypeImage, "https://example.com/x.png"))
		assert.True(t, p.blocks(proto.NetworkResourceTypeFont, "https://example.com/x.woff2"))
		assert.False(t, p.blocks(proto.NetworkResourceTypeScript, "https://example.com/app.js"))
		assert.False(t, p.blocks(proto.NetworkResourceTypeStylesheet, "https://example.com/x.css"))
	})

	t.Run("ads", func(t *testing.T) {
		p := newBlockPolicy(nil, true)
		assert.False(t, p.empty())
		assert.True(t, p.blocks(proto.NetworkResourceTypeScript, "https://www.googletagmanager.com/gtm.js"))
		assert.False(t, p.blocks(proto.NetworkResourceTypeScript, "https://example.com/app.js"))
		assert.False(t, p.blocks(proto.NetworkResourceTypeScript, "://bad"))
	})
}
