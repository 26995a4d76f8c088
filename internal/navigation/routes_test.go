package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Route
	}{
		{name: "empty redirects", in: "", want: Route{Path: "/users", View: ViewList, Redirected: true}},
		{name: "root redirects", in: "/", want: Route{Path: "/users", View: ViewList, Redirected: true}},
		{name: "list", in: "/users", want: Route{Path: "/users", View: ViewList}},
		{name: "list trailing slash", in: "/users/", want: Route{Path: "/users", View: ViewList}},
		{name: "list with query", in: "/users?search=jane", want: Route{Path: "/users", View: ViewList}},
		{name: "detail", in: "/users/1", want: Route{Path: "/users/1", View: ViewDetail, Params: Params{"id": "1"}}},
		{name: "detail keeps raw id", in: "/users/abc", want: Route{Path: "/users/abc", View: ViewDetail, Params: Params{"id": "abc"}}},
		{name: "detail without leading slash", in: "users/7", want: Route{Path: "/users/7", View: ViewDetail, Params: Params{"id": "7"}}},
		{name: "nested path redirects", in: "/users/1/posts", want: Route{Path: "/users", View: ViewList, Redirected: true}},
		{name: "parent segment redirects", in: "/users/1/../2", want: Route{Path: "/users", View: ViewList, Redirected: true}},
		{name: "dot segment redirects", in: "/users/./5", want: Route{Path: "/users", View: ViewList, Redirected: true}},
		{name: "empty segment redirects", in: "/users//3", want: Route{Path: "/users", View: ViewList, Redirected: true}},
		{name: "detail trailing slash", in: "/users/4/", want: Route{Path: "/users/4", View: ViewDetail, Params: Params{"id": "4"}}},
		{name: "unknown redirects", in: "/settings", want: Route{Path: "/users", View: ViewList, Redirected: true}},
		{name: "prefix lookalike redirects", in: "/usersx", want: Route{Path: "/users", View: ViewList, Redirected: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.in))
		})
	}
}

func TestUserPath(t *testing.T) {
	assert.Equal(t, "/users/42", UserPath(42))
	assert.Equal(t, ViewDetail, Resolve(UserPath(42)).View)
}

func TestParamsGet(t *testing.T) {
	p := Params{"id": "3"}

	v, ok := p.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	_, ok = p.Get("missing")
	assert.False(t, ok)

	var empty Params
	_, ok = empty.Get("id")
	assert.False(t, ok)
}

func TestNavigatorFunc(t *testing.T) {
	var got string
	NavigatorFunc(func(p string) { got = p }).Navigate("/users")
	assert.Equal(t, "/users", got)
}
