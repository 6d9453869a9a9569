package mcp

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/domain"
)

// rejectUnknown fails when the request carries fields outside the tool's
// declared input shape.
func rejectUnknown(req mcp.CallToolRequest, allowed ...string) error {
	allowedSet := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = true
	}
	var unknown []string
	for k := range req.GetArguments() {
		if !allowedSet[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return apperr.Invalid("unknown field(s): %s", strings.Join(unknown, ", "))
}

func strArg(req mcp.CallToolRequest, key string) (string, error) {
	v, ok := req.GetArguments()[key]
	if !ok {
		return "", apperr.Invalid("%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", apperr.Invalid("%s must be a string", key)
	}
	return s, nil
}

func optStrArg(req mcp.CallToolRequest, key string) (*string, error) {
	v, ok := req.GetArguments()[key]
	if !ok {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, apperr.Invalid("%s must be a string", key)
	}
	return &s, nil
}

func intArg(req mcp.CallToolRequest, key string) (int64, error) {
	v, ok := req.GetArguments()[key]
	if !ok {
		return 0, apperr.Invalid("%s is required", key)
	}
	return coerceInt(key, v)
}

func optIntArg(req mcp.CallToolRequest, key string) (*int64, error) {
	v, ok := req.GetArguments()[key]
	if !ok {
		return nil, nil
	}
	n, err := coerceInt(key, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func coerceInt(key string, v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != float64(int64(n)) {
			return 0, apperr.Invalid("%s must be an integer", key)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	}
	return 0, apperr.Invalid("%s must be an integer", key)
}

func optBoolArg(req mcp.CallToolRequest, key string) (*bool, error) {
	v, ok := req.GetArguments()[key]
	if !ok {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, apperr.Invalid("%s must be a boolean", key)
	}
	return &b, nil
}

// timeArg parses a required ISO-8601 datetime with explicit offset. Naive
// datetimes are rejected by the RFC3339 grammar.
func timeArg(req mcp.CallToolRequest, key string) (time.Time, error) {
	s, err := strArg(req, key)
	if err != nil {
		return time.Time{}, err
	}
	return parseDateTime(key, s)
}

func optTimeArg(req mcp.CallToolRequest, key string) (*time.Time, error) {
	s, err := optStrArg(req, key)
	if err != nil || s == nil {
		return nil, err
	}
	t, err := parseDateTime(key, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDateTime(key, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperr.Invalid("%s must be an ISO-8601 datetime with offset, got %q", key, s)
	}
	return t, nil
}

func dateArg(req mcp.CallToolRequest, key string) (time.Time, error) {
	s, err := strArg(req, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperr.Invalid("%s must be a date (YYYY-MM-DD), got %q", key, s)
	}
	return t, nil
}

func optDateArg(req mcp.CallToolRequest, key string) (*time.Time, error) {
	s, err := optStrArg(req, key)
	if err != nil || s == nil {
		return nil, err
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, apperr.Invalid("%s must be a date (YYYY-MM-DD), got %q", key, *s)
	}
	return &t, nil
}

func optTagsArg(req mcp.CallToolRequest, key string) (*[]string, error) {
	v, ok := req.GetArguments()[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, apperr.Invalid("%s must be a list of strings", key)
	}
	tags := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, apperr.Invalid("%s must be a list of strings", key)
		}
		tags = append(tags, s)
	}
	return &tags, nil
}

func optIntListArg(req mcp.CallToolRequest, key string) (*[]int64, error) {
	v, ok := req.GetArguments()[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, apperr.Invalid("%s must be a list of integers", key)
	}
	out := make([]int64, 0, len(list))
	for _, item := range list {
		n, err := coerceInt(key, item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return &out, nil
}

func optPrivacyArg(req mcp.CallToolRequest) (*domain.PrivacyLevel, error) {
	s, err := optStrArg(req, "privacy_level")
	if err != nil || s == nil {
		return nil, err
	}
	if !domain.ValidPrivacyLevel(*s) {
		return nil, apperr.Invalid("privacy_level must be one of public, internal, private")
	}
	p := domain.PrivacyLevel(*s)
	return &p, nil
}

func optEntityRefArgs(req mcp.CallToolRequest, typeKey, idKey string) (*domain.EntityType, *int64, error) {
	typeStr, err := optStrArg(req, typeKey)
	if err != nil {
		return nil, nil, err
	}
	id, err := optIntArg(req, idKey)
	if err != nil {
		return nil, nil, err
	}
	if (typeStr == nil) != (id == nil) {
		return nil, nil, apperr.Invalid("%s and %s must be provided together", typeKey, idKey)
	}
	if typeStr == nil {
		return nil, nil, nil
	}
	if !domain.ValidEntityType(*typeStr) {
		return nil, nil, apperr.Invalid("%s: unknown entity type %q", typeKey, *typeStr)
	}
	et := domain.EntityType(*typeStr)
	return &et, id, nil
}

// errResult maps a service error onto a structured tool error with its
// stable machine-readable code.
func errResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", apperr.Code(err), err))
}
