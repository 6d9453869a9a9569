package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/domain"
)

// baseAlias names the base relation in compiled SQL.
const baseAlias = "b"

// compiler accumulates joins and rendered predicates for one query. Joins
// are keyed by path prefix so the same relationship path mentioned in
// several clauses compiles to a single join.
type compiler struct {
	baseEntity string
	base       entitySpec
	now        time.Time
	profile    *domain.UserProfile

	joins   []string
	aliases map[string]string
	joinN   int
	existsN int
}

func newCompiler(entity string, now time.Time, profile *domain.UserProfile) *compiler {
	return &compiler{
		baseEntity: entity,
		base:       schema[entity],
		now:        now,
		profile:    profile,
		aliases:    map[string]string{},
	}
}

// ensureJoin introduces LEFT JOINs for a single-valued step chain and
// returns the alias of the final entity. Reuses joins per path prefix.
func (c *compiler) ensureJoin(steps []pathStep) string {
	alias := baseAlias
	prefix := ""
	for _, step := range steps {
		if prefix == "" {
			prefix = step.name
		} else {
			prefix = prefix + "." + step.name
		}
		if existing, ok := c.aliases[prefix]; ok {
			alias = existing
			continue
		}
		c.joinN++
		next := fmt.Sprintf("j%d", c.joinN)
		target := schema[step.edge.target]
		c.joins = append(c.joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = %s.%s",
			target.table, next, alias, step.edge.fromCol, next, target.idCol))
		c.aliases[prefix] = next
		alias = next
	}
	return alias
}

// filterSQL compiles one clause to a predicate fragment and its arguments.
func (c *compiler) filterSQL(f FilterClause) (string, []any, error) {
	rp, err := resolvePath(c.baseEntity, f.Field)
	if err != nil {
		return "", nil, err
	}
	if !rp.hasMany {
		alias := c.ensureJoin(rp.steps)
		return c.predSQL(alias+"."+rp.leaf.column, f.Operator, f.Value, rp.leaf.ftype)
	}
	// A collection-valued hop anywhere in the path switches the whole
	// clause to EXISTS semantics so entity rows never multiply.
	return c.existsSQL(baseAlias, c.baseEntity, rp.steps, rp.leaf, f)
}

func (c *compiler) existsSQL(srcAlias, srcEntity string, steps []pathStep, leaf fieldSpec, f FilterClause) (string, []any, error) {
	if len(steps) == 0 {
		return c.predSQL(srcAlias+"."+leaf.column, f.Operator, f.Value, leaf.ftype)
	}
	step := steps[0]
	target := schema[step.edge.target]
	c.existsN++
	alias := fmt.Sprintf("e%d", c.existsN)

	var cond string
	if step.edge.kind == edgeMany {
		src := schema[srcEntity]
		cond = fmt.Sprintf("%s.%s = %s.%s", alias, step.edge.toCol, srcAlias, src.idCol)
	} else {
		cond = fmt.Sprintf("%s.%s = %s.%s", srcAlias, step.edge.fromCol, alias, target.idCol)
	}

	inner, args, err := c.existsSQL(alias, step.edge.target, steps[1:], leaf, f)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM %s %s WHERE %s AND %s)",
		target.table, alias, cond, inner), args, nil
}

// predSQL renders the leaf predicate for one operator.
func (c *compiler) predSQL(col string, op Op, value any, ft fieldType) (string, []any, error) {
	switch op {
	case OpEq, OpNe:
		v, err := c.convertScalar(value, ft)
		if err != nil {
			return "", nil, err
		}
		cmp := "="
		if op == OpNe {
			cmp = "!="
		}
		if ft == typeString {
			return fmt.Sprintf("LOWER(%s) %s ?", col, cmp), []any{strings.ToLower(v.(string))}, nil
		}
		return fmt.Sprintf("%s %s ?", col, cmp), []any{v}, nil

	case OpGt, OpGte, OpLt, OpLte:
		v, err := c.convertScalar(value, ft)
		if err != nil {
			return "", nil, err
		}
		cmp := map[Op]string{OpGt: ">", OpGte: ">=", OpLt: "<", OpLte: "<="}[op]
		return fmt.Sprintf("%s %s ?", col, cmp), []any{v}, nil

	case OpIn, OpNotIn:
		list := value.([]any)
		args := make([]any, 0, len(list))
		for _, item := range list {
			v, err := c.convertScalar(item, ft)
			if err != nil {
				return "", nil, err
			}
			if ft == typeString {
				v = strings.ToLower(v.(string))
			}
			args = append(args, v)
		}
		lhs := col
		if ft == typeString {
			lhs = fmt.Sprintf("LOWER(%s)", col)
		}
		kw := "IN"
		if op == OpNotIn {
			kw = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", lhs, kw, placeholders(len(args))), args, nil

	case OpContains, OpStartsWith, OpEndsWith:
		pat := escapeLike(strings.ToLower(value.(string)))
		switch op {
		case OpContains:
			pat = "%" + pat + "%"
		case OpStartsWith:
			pat = pat + "%"
		case OpEndsWith:
			pat = "%" + pat
		}
		return fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", col), []any{pat}, nil

	case OpIsNull:
		return col + " IS NULL", nil, nil
	case OpIsNotNull:
		return col + " IS NOT NULL", nil, nil

	case OpHasTag:
		return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value = ?)", col),
			[]any{value.(string)}, nil

	case OpHasAnyTag:
		list := value.([]any)
		args := make([]any, 0, len(list))
		for _, item := range list {
			args = append(args, item.(string))
		}
		return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value IN (%s))",
			col, placeholders(len(args))), args, nil
	}
	return "", nil, apperr.Invalid("invalid operator: unknown operator %q", op)
}

// convertScalar maps a JSON literal onto its storage form for the field
// type, resolving time shortcuts where a date or datetime literal is legal.
func (c *compiler) convertScalar(v any, ft fieldType) (any, error) {
	switch ft {
	case typeInt:
		switch n := v.(type) {
		case float64:
			if n != float64(int64(n)) {
				return nil, apperr.Invalid("invalid value: %v is not an integer", v)
			}
			return int64(n), nil
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		}
		return nil, apperr.Invalid("invalid value: expected an integer, got %T", v)

	case typeString, typeEnum:
		s, ok := v.(string)
		if !ok {
			return nil, apperr.Invalid("invalid value: expected a string, got %T", v)
		}
		return s, nil

	case typeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, apperr.Invalid("invalid value: expected a boolean, got %T", v)
		}
		if b {
			return int64(1), nil
		}
		return int64(0), nil

	case typeDecimal:
		var d decimal.Decimal
		switch n := v.(type) {
		case float64:
			d = decimal.NewFromFloat(n)
		case int:
			d = decimal.NewFromInt(int64(n))
		case int64:
			d = decimal.NewFromInt(n)
		case string:
			var err error
			if d, err = decimal.NewFromString(n); err != nil {
				return nil, apperr.Invalid("invalid value: %q is not a decimal", n)
			}
		default:
			return nil, apperr.Invalid("invalid value: expected a decimal, got %T", v)
		}
		return d.Round(1).Shift(1).IntPart(), nil

	case typeDate:
		s, ok := v.(string)
		if !ok {
			return nil, apperr.Invalid("invalid value: expected a date string, got %T", v)
		}
		if resolved, ok := resolveShortcut(s, typeDate, c.now, c.profile); ok {
			return resolved, nil
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return nil, apperr.Invalid("invalid value: %q is not a date (want YYYY-MM-DD)", s)
		}
		return s, nil

	case typeDateTime:
		s, ok := v.(string)
		if !ok {
			return nil, apperr.Invalid("invalid value: expected a datetime string, got %T", v)
		}
		if resolved, ok := resolveShortcut(s, typeDateTime, c.now, c.profile); ok {
			return resolved, nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, apperr.Invalid("invalid value: %q is not an ISO-8601 datetime with offset", s)
		}
		return t.UTC().Format(time.RFC3339), nil
	}
	return nil, apperr.Invalid("invalid value: unsupported field type")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
