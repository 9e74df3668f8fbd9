// Copyright (c) 2026 BIMS Project. All rights reserved.

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baryo/bims/pkg/pagination"
)

/*
TestFromRequest verifies query parameter parsing and clamping behavior.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/users", pagination.DefaultPage, pagination.DefaultLimit},
		{"explicit_values", "/users?page=3&limit=50", 3, 50},
		{"negative_page_clamped", "/users?page=-1&limit=10", pagination.DefaultPage, 10},
		{"zero_limit_clamped", "/users?page=2&limit=0", 2, pagination.DefaultLimit},
		{"excessive_limit_clamped", "/users?limit=9999", pagination.DefaultPage, pagination.DefaultLimit},
		{"non_numeric_ignored", "/users?page=abc&limit=xyz", pagination.DefaultPage, pagination.DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", tt.url, nil)
			params := pagination.FromRequest(request)

			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
		})
	}
}

/*
TestOffset verifies the SQL OFFSET derivation from page and limit.
*/
func TestOffset(t *testing.T) {
	tests := []struct {
		name   string
		params pagination.Params
		want   int
	}{
		{"first_page", pagination.Params{Page: 1, Limit: 20}, 0},
		{"second_page", pagination.Params{Page: 2, Limit: 20}, 20},
		{"fifth_page_custom_limit", pagination.Params{Page: 5, Limit: 7}, 28},
		{"zero_page_safe", pagination.Params{Page: 0, Limit: 20}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Offset())
		})
	}
}

/*
TestNewMeta verifies total page calculation, including partial last pages.
*/
func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(2, 20, 45)

	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.Limit)
	assert.Equal(t, 45, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	empty := pagination.NewMeta(1, 20, 0)
	assert.Equal(t, 0, empty.TotalPages)
}
