package query

import (
	"strings"

	"github.com/jarosser06/mosaic/internal/apperr"
)

// pathStep is one relationship hop during traversal.
type pathStep struct {
	entity string // entity the hop starts from
	name   string // edge name
	edge   edgeSpec
}

// resolvedPath is the outcome of walking a dotted field path through the
// relationship graph.
type resolvedPath struct {
	raw      string
	steps    []pathStep
	leafName string
	leaf     fieldSpec
	hasMany  bool
}

// resolvePath walks a dot-separated path from the base entity. Intermediate
// segments must be relationship edges; the final segment must be a field of
// the final entity, or a single-valued edge name, which normalizes to its
// FK storage column.
func resolvePath(base, raw string) (*resolvedPath, error) {
	segments := strings.Split(raw, ".")
	if raw == "" || len(segments) == 0 {
		return nil, apperr.Invalid("invalid field: empty path")
	}

	rp := &resolvedPath{raw: raw}
	current := base
	for i, seg := range segments {
		spec, ok := schema[current]
		if !ok {
			return nil, apperr.Invalid("invalid path %q: unknown entity %q", raw, current)
		}
		last := i == len(segments)-1
		if !last {
			edge, ok := spec.edges[seg]
			if !ok {
				return nil, apperr.Invalid("invalid path %q: %q is not a relationship of %s", raw, seg, current)
			}
			rp.steps = append(rp.steps, pathStep{entity: current, name: seg, edge: edge})
			if edge.kind == edgeMany {
				rp.hasMany = true
			}
			current = edge.target
			continue
		}

		// Leaf: a plain field, or a single-valued edge name that normalizes
		// to its FK column (on_behalf_of -> on_behalf_of_id).
		if f, ok := spec.fields[seg]; ok {
			rp.leafName = seg
			rp.leaf = f
			return rp, nil
		}
		if edge, ok := spec.edges[seg]; ok && edge.kind == edgeOne {
			rp.leafName = seg
			rp.leaf = fieldSpec{column: edge.fromCol, ftype: typeInt, nullable: edge.nullable}
			return rp, nil
		}
		return nil, apperr.Invalid("invalid field: %q is not a field of %s", seg, current)
	}
	return nil, apperr.Invalid("invalid field: empty path")
}
