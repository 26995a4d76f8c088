// Package navigation maps in-process paths to views.
package navigation

import (
	"strconv"
	"strings"
)

// View identifies which controller a route activates.
type View string

const (
	ViewList   View = "list"
	ViewDetail View = "detail"
)

// ListPath is the canonical path of the user list.
const ListPath = "/users"

// Params carries path parameters, unparsed.
type Params map[string]string

// Get returns the named parameter and whether it was present.
func (p Params) Get(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

// Route is a resolved navigation target.
type Route struct {
	Path       string `json:"path"`
	View       View   `json:"view"`
	Params     Params `json:"params,omitempty"`
	Redirected bool   `json:"redirected"`
}

// Navigator performs navigation side effects on behalf of controllers.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(path string) { f(path) }

// UserPath returns the detail path of a user.
func UserPath(id int64) string {
	return ListPath + "/" + strconv.FormatInt(id, 10)
}

// Resolve maps a path to a route.
//
//	""  or "/"       -> redirect to /users
//	/users           -> list
//	/users/:id       -> detail, params["id"] as given
//	anything else    -> redirect to /users
func Resolve(p string) Route {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	// Segments are matched as given: dot segments are not resolved.
	p = strings.TrimSuffix(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if p == ListPath {
		return Route{Path: ListPath, View: ViewList}
	}

	if id, ok := strings.CutPrefix(p, ListPath+"/"); ok && id != "" && !strings.Contains(id, "/") {
		return Route{
			Path:   p,
			View:   ViewDetail,
			Params: Params{"id": id},
		}
	}

	return Route{Path: ListPath, View: ViewList, Redirected: true}
}
