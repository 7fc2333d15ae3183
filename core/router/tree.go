package router

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/dmitrymomot/brokerage/core/handler"
)

type methodTyp uint

const (
	mCONNECT methodTyp = 1 << iota
	mDELETE
	mGET
	mHEAD
	mOPTIONS
	mPATCH
	mPOST
	mPUT
	mTRACE
)

var methodMap = map[string]methodTyp{
	http.MethodConnect: mCONNECT,
	http.MethodDelete:  mDELETE,
	http.MethodGet:     mGET,
	http.MethodHead:    mHEAD,
	http.MethodOptions: mOPTIONS,
	http.MethodPatch:   mPATCH,
	http.MethodPost:    mPOST,
	http.MethodPut:     mPUT,
	http.MethodTrace:   mTRACE,
}

var reverseMethodMap = map[methodTyp]string{
	mCONNECT: http.MethodConnect,
	mDELETE:  http.MethodDelete,
	mGET:     http.MethodGet,
	mHEAD:    http.MethodHead,
	mOPTIONS: http.MethodOptions,
	mPATCH:   http.MethodPatch,
	mPOST:    http.MethodPost,
	mPUT:     http.MethodPut,
	mTRACE:   http.MethodTrace,
}

// routeParams holds path parameters in match order.
type routeParams struct {
	Keys   []string
	Values []string
}

type nodeTyp uint8

const (
	ntStatic nodeTyp = iota // /properties
	ntParam                 // /{id}
)

// node is one path segment of the routing tree.
type node[C handler.Context] struct {
	typ nodeTyp

	// static text, or the parameter name for param nodes
	segment string

	static map[string]*node[C]
	param  *node[C]

	endpoints endpoints[C]
}

type endpoints[C handler.Context] map[methodTyp]*endpoint[C]

type endpoint[C handler.Context] struct {
	handler handler.HandlerFunc[C]
	pattern string
}

// insertRoute registers h for method at pattern. Registering the same
// method and pattern again replaces the handler.
func (n *node[C]) insertRoute(method methodTyp, pattern string, h handler.HandlerFunc[C]) error {
	seen := map[string]bool{}
	cur := n
	for _, seg := range splitPath(pattern) {
		name, isParam, err := parseSegment(seg)
		if err != nil {
			return fmt.Errorf("%w: '%s'", err, pattern)
		}

		if !isParam {
			if cur.static == nil {
				cur.static = make(map[string]*node[C])
			}
			child, ok := cur.static[seg]
			if !ok {
				child = &node[C]{typ: ntStatic, segment: seg}
				cur.static[seg] = child
			}
			cur = child
			continue
		}

		if seen[name] {
			return fmt.Errorf("%w: {%s} in '%s'", ErrDuplicateParam, name, pattern)
		}
		seen[name] = true

		switch {
		case cur.param == nil:
			cur.param = &node[C]{typ: ntParam, segment: name}
		case cur.param.segment != name:
			return fmt.Errorf("%w: {%s} and {%s} in '%s'", ErrParamConflict, cur.param.segment, name, pattern)
		}
		cur = cur.param
	}

	if cur.endpoints == nil {
		cur.endpoints = make(endpoints[C])
	}
	cur.endpoints[method] = &endpoint[C]{handler: h, pattern: pattern}
	return nil
}

// findRoute returns the endpoints of the node matching path, the handler for
// method if any, and the path parameters.
func (n *node[C]) findRoute(method methodTyp, path string) (endpoints[C], handler.HandlerFunc[C], routeParams) {
	var params routeParams
	leaf := n.match(splitPath(path), &params)
	if leaf == nil {
		return nil, nil, routeParams{}
	}
	if ep, ok := leaf.endpoints[method]; ok {
		return leaf.endpoints, ep.handler, params
	}
	return leaf.endpoints, nil, params
}

func (n *node[C]) match(segs []string, params *routeParams) *node[C] {
	if len(segs) == 0 {
		if len(n.endpoints) > 0 {
			return n
		}
		return nil
	}

	seg := segs[0]
	if child, ok := n.static[seg]; ok {
		if leaf := child.match(segs[1:], params); leaf != nil {
			return leaf
		}
	}

	if n.param == nil || seg == "" {
		return nil
	}
	value, err := url.PathUnescape(seg)
	if err != nil {
		value = seg
	}
	params.Keys = append(params.Keys, n.param.segment)
	params.Values = append(params.Values, value)
	if leaf := n.param.match(segs[1:], params); leaf != nil {
		return leaf
	}
	params.Keys = params.Keys[:len(params.Keys)-1]
	params.Values = params.Values[:len(params.Values)-1]
	return nil
}

// routes lists every registered route sorted by pattern, then method.
func (n *node[C]) routes() []Route {
	var out []Route
	var walk func(*node[C])
	walk = func(cur *node[C]) {
		for mt, ep := range cur.endpoints {
			out = append(out, Route{Method: reverseMethodMap[mt], Pattern: ep.pattern})
		}
		for _, child := range cur.static {
			walk(child)
		}
		if cur.param != nil {
			walk(cur.param)
		}
	}
	walk(n)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// allowed lists the methods registered on eps in a stable order.
func (eps endpoints[C]) allowed() []string {
	out := make([]string, 0, len(eps))
	for mt := range eps {
		out = append(out, reverseMethodMap[mt])
	}
	sort.Strings(out)
	return out
}

func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func parseSegment(seg string) (name string, isParam bool, err error) {
	if !strings.ContainsAny(seg, "{}") {
		return "", false, nil
	}
	if len(seg) < 3 || seg[0] != '{' || seg[len(seg)-1] != '}' || strings.ContainsAny(seg[1:len(seg)-1], "{}/") {
		return "", false, ErrInvalidPattern
	}
	return seg[1 : len(seg)-1], true, nil
}
