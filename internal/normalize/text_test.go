package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachwell/creator-scout/internal/model"
)

func TestParseFollowerCount(t *testing.T) {
	tests := []struct {
		text string
		want int64
		ok   bool
	}{
		{"12.3K followers", 12_300, true},
		{"4,500 subscribers", 4_500, true},
		{"2M subs", 2_000_000, true},
		{"1.5m followers", 1_500_000, true},
		{"1B subscribers", 1_000_000_000, true},
		{"987 followers", 987, true},
		{"1 follower", 1, true},
		{"Jess Fit (@jessfit) • 12.3K Followers on Instagram", 12_300, true},
		{"no numbers here", 0, false},
		{"500 likes", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseFollowerCount(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStanSlugFromText(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"my store: stan.store/jessfit", "jessfit", true},
		{"https://stan.store/JessFit.", "jessfit", true},
		{"see STAN.STORE/jess-fit,", "jess-fit", true},
		{"stan.store/", "", false},
		{"nothing here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := StanSlugFromText(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleFromMentions(t *testing.T) {
	handle, platform, ok := HandleFromMentions("Jess Fit (@jessfit) on Instagram")
	require.True(t, ok)
	assert.Equal(t, "jessfit", handle)
	assert.Equal(t, model.PlatformUnknown, platform)

	handle, platform, ok = HandleFromMentions("Follow me — YouTube · JessFit")
	require.True(t, ok)
	assert.Equal(t, "JessFit", handle)
	assert.Equal(t, model.PlatformYouTube, platform)

	_, _, ok = HandleFromMentions("no mentions in this text")
	assert.False(t, ok)
}

func TestFlattenStrings_DepthCap(t *testing.T) {
	deep := map[string]any{
		"l1": map[string]any{
			"l2": map[string]any{
				"l3": map[string]any{
					"l4": map[string]any{
						"l5": "too deep",
					},
					"keep": "level four",
				},
			},
		},
	}
	out := FlattenStrings(deep)
	assert.Contains(t, out, "level four")
	assert.NotContains(t, out, "too deep")
}

func TestFlattenStrings_CountCap(t *testing.T) {
	var many []any
	for i := 0; i < 300; i++ {
		many = append(many, fmt.Sprintf("s%d", i))
	}
	out := FlattenStrings(map[string]any{"items": many})
	assert.Len(t, out, flattenMaxStrings)
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		href string
		base string
		want string
		ok   bool
	}{
		{
			name: "strips utm and tracking params",
			href: "https://Example.com/page?utm_source=g&utm_medium=cpc&id=7",
			want: "https://example.com/page?id=7",
			ok:   true,
		},
		{
			name: "relative resolved against base",
			href: "/profile?fbclid=zzz",
			base: "https://example.com/search",
			want: "https://example.com/profile",
			ok:   true,
		},
		{
			name: "rejects media extension",
			href: "https://example.com/header.png",
			ok:   false,
		},
		{
			name: "rejects search engine host",
			href: "https://www.google.com/search?q=x",
			ok:   false,
		},
		{
			name: "rejects mailto",
			href: "mailto:jess@example.com",
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalURL(tt.href, tt.base)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestIsSocialHost(t *testing.T) {
	assert.True(t, IsSocialHost("www.instagram.com"))
	assert.True(t, IsSocialHost("stan.store"))
	assert.False(t, IsSocialHost("jessfit.com"))
}
