package listing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	allowed := []string{"id", "name", "price", "brand"}

	testCases := []struct {
		name         string
		params       Params
		expected     Query
		expectedPage int
	}{
		{
			name:         "Defaults for zero params",
			params:       Params{},
			expected:     Query{Offset: 0, Limit: 10, Sort: "id", Order: Asc},
			expectedPage: 1,
		},
		{
			name:         "Second page offset",
			params:       Params{Page: 2, Limit: 10, Sort: "name", Order: "DESC"},
			expected:     Query{Offset: 10, Limit: 10, Sort: "name", Order: Desc},
			expectedPage: 2,
		},
		{
			name:         "Unknown sort field falls back to id",
			params:       Params{Page: 2, Limit: 10, Sort: "bogus_field", Order: "ASC"},
			expected:     Query{Offset: 10, Limit: 10, Sort: "id", Order: Asc},
			expectedPage: 2,
		},
		{
			name:         "Injection attempt in sort falls back to id",
			params:       Params{Sort: "price; DROP TABLE products"},
			expected:     Query{Offset: 0, Limit: 10, Sort: "id", Order: Asc},
			expectedPage: 1,
		},
		{
			name:         "Sort and order are case-insensitive",
			params:       Params{Sort: " Brand ", Order: "desc"},
			expected:     Query{Offset: 0, Limit: 10, Sort: "brand", Order: Desc},
			expectedPage: 1,
		},
		{
			name:         "Unknown order becomes ASC",
			params:       Params{Order: "sideways"},
			expected:     Query{Offset: 0, Limit: 10, Sort: "id", Order: Asc},
			expectedPage: 1,
		},
		{
			name:         "Limit clamped to max",
			params:       Params{Page: 3, Limit: 500},
			expected:     Query{Offset: 200, Limit: 100, Sort: "id", Order: Asc},
			expectedPage: 3,
		},
		{
			name:         "Negative page and limit use defaults",
			params:       Params{Page: -4, Limit: -1},
			expected:     Query{Offset: 0, Limit: 10, Sort: "id", Order: Asc},
			expectedPage: 1,
		},
		{
			name:         "Huge page is capped so the offset cannot overflow",
			params:       Params{Page: math.MaxInt, Limit: 100},
			expected:     Query{Offset: (math.MaxInt/100 - 1) * 100, Limit: 100, Sort: "id", Order: Asc},
			expectedPage: math.MaxInt / 100,
		},
		{
			name:         "Huge page with default limit",
			params:       Params{Page: math.MaxInt / 10},
			expected:     Query{Offset: (math.MaxInt/10 - 1) * 10, Limit: 10, Sort: "id", Order: Asc},
			expectedPage: math.MaxInt / 10,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, page := Resolve(tc.params, allowed...)
			assert.Equal(t, tc.expected, q)
			assert.Equal(t, tc.expectedPage, page)
		})
	}
}

func TestResolveRespectsAllowList(t *testing.T) {
	q, _ := Resolve(Params{Sort: "price"}, "id", "name")
	assert.Equal(t, "id", q.Sort, "price is not allowed for this listing")
}

func TestNewPageNeverNil(t *testing.T) {
	q, page := Resolve(Params{Page: 2, Limit: 5})
	p := NewPage[string](nil, 7, page, q)

	assert.NotNil(t, p.Items)
	assert.Len(t, p.Items, 0)
	assert.Equal(t, int64(7), p.Total)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 5, p.Limit)
}
