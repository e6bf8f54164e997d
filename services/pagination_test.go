package services

import "testing"

func TestNewPageClamps(t *testing.T) {
	cases := []struct {
		skip, limit int
		want        Page
	}{
		{0, 20, Page{Skip: 0, Limit: 20}},
		{-5, 20, Page{Skip: 0, Limit: 20}},
		{10, 0, Page{Skip: 10, Limit: 20}},
		{10, -1, Page{Skip: 10, Limit: 20}},
		{0, 500, Page{Skip: 0, Limit: 100}},
		{3, 7, Page{Skip: 3, Limit: 7}},
	}
	for _, c := range cases {
		if got := NewPage(c.skip, c.limit); got != c.want {
			t.Errorf("NewPage(%d, %d) = %+v, want %+v", c.skip, c.limit, got, c.want)
		}
	}
}

func TestHasMore(t *testing.T) {
	cases := []struct {
		total int64
		page  Page
		want  bool
	}{
		{0, Page{Skip: 0, Limit: 20}, false},
		{20, Page{Skip: 0, Limit: 20}, false},
		{21, Page{Skip: 0, Limit: 20}, true},
		{100, Page{Skip: 80, Limit: 20}, false},
		{100, Page{Skip: 79, Limit: 20}, true},
		{5, Page{Skip: 50, Limit: 20}, false},
	}
	for _, c := range cases {
		if got := HasMore(c.total, c.page); got != c.want {
			t.Errorf("HasMore(%d, %+v) = %v, want %v", c.total, c.page, got, c.want)
		}
	}
}
