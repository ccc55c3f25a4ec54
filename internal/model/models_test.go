package model_test

import (
	"testing"

	"github.com/miguel-so/FE-ebay-api-cron/internal/model"
)

func TestLimit(t *testing.T) {
	intp := func(v int) *int { return &v }

	cases := []struct {
		name       string
		maxResults *int
		want       int
	}{
		{"absent uses default", nil, 20},
		{"explicit value passes through", intp(50), 50},
		{"zero uses default", intp(0), 20},
		{"negative uses default", intp(-5), 20},
		{"exactly the cap", intp(100), 100},
		{"above the cap is capped", intp(500), 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := model.SearchCriteria{MaxResults: tc.maxResults}
			if got := c.Limit(); got != tc.want {
				t.Errorf("Limit() = %d, want %d", got, tc.want)
			}
		})
	}
}
