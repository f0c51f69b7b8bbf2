package activity

import (
	"testing"

	"github.com/orgball2608/technews-autopilot/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestEngagementRate(t *testing.T) {
	tests := []struct {
		name string
		m    domain.EngagementMetrics
		want float64
	}{
		{name: "zero metrics", m: domain.EngagementMetrics{}, want: 0},
		{name: "no impressions counts as one", m: domain.EngagementMetrics{Likes: 2}, want: 200},
		{name: "rounded to two decimals", m: domain.EngagementMetrics{Likes: 1, Shares: 1, Comments: 1, Impressions: 7}, want: 42.86},
		{name: "retweets count", m: domain.EngagementMetrics{Retweets: 5, Impressions: 1000}, want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, EngagementRate(tt.m))
		})
	}
}
