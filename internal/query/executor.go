package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jarosser06/mosaic/internal/apperr"
	"github.com/jarosser06/mosaic/internal/db"
	"github.com/jarosser06/mosaic/internal/domain"
)

// Options carry the execution context: privacy access mode, the user
// profile driving timezone-sensitive literals, and the clock.
type Options struct {
	Mode    AccessMode
	Profile *domain.UserProfile
	Now     time.Time
}

// Group is one grouped-aggregation entry.
type Group struct {
	Values []any
	Result any
}

// AggResult is a computed aggregation, scalar or grouped. TotalGroups is
// the distinct-group count before pagination.
type AggResult struct {
	Function    AggFunc
	Field       string
	Grouped     bool
	Scalar      any
	Groups      []Group
	TotalGroups int64
}

// Result is the executor's output. Entity queries return matching row ids
// in order plus the pre-pagination count; callers materialize DTOs through
// the repositories so storage column names never leak. Aggregations return
// Agg instead.
type Result struct {
	EntityType string
	IDs        []int64
	TotalCount int64
	Agg        *AggResult
}

// Engine compiles validated queries into SQL and runs them.
type Engine struct {
	db db.DBTX
}

// NewEngine creates an Engine over the given store handle.
func NewEngine(db db.DBTX) *Engine {
	return &Engine{db: db}
}

// Execute validates and runs a query.
func (e *Engine) Execute(ctx context.Context, q *Query, opts Options) (*Result, error) {
	if err := Validate(q); err != nil {
		return nil, err
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	if opts.Mode == "" {
		opts.Mode = AccessAll
	}

	c := newCompiler(q.EntityType, opts.Now, opts.Profile)

	var where []string
	var args []any
	for _, f := range q.Filters {
		frag, fargs, err := c.filterSQL(f)
		if err != nil {
			return nil, err
		}
		where = append(where, frag)
		args = append(args, fargs...)
	}
	if spec := schema[q.EntityType]; privacyAware[q.EntityType] && opts.Mode != AccessAll {
		frag, fargs := PrivacyPredicate(opts.Mode, baseAlias+"."+spec.privacy)
		where = append(where, frag)
		args = append(args, fargs...)
	}

	if q.Aggregation != nil {
		return e.runAggregation(ctx, q, c, where, args)
	}
	return e.runEntity(ctx, q, c, where, args)
}

func (e *Engine) runEntity(ctx context.Context, q *Query, c *compiler, where []string, args []any) (*Result, error) {
	spec := schema[q.EntityType]

	var orderTerms []string
	for _, o := range q.OrderBy {
		rp, err := resolvePath(q.EntityType, o.Field)
		if err != nil {
			return nil, err
		}
		alias := c.ensureJoin(rp.steps)
		dir := "ASC"
		if o.Direction == "desc" {
			dir = "DESC"
		}
		orderTerms = append(orderTerms, fmt.Sprintf("%s.%s %s", alias, rp.leaf.column, dir))
	}
	if len(orderTerms) == 0 {
		orderTerms = append(orderTerms, baseAlias+".id ASC")
	}

	from := fmt.Sprintf("FROM %s %s", spec.table, baseAlias)
	if len(c.joins) > 0 {
		from += " " + strings.Join(c.joins, " ")
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	countSQL := fmt.Sprintf("SELECT COUNT(*) %s%s", from, whereSQL)
	var total int64
	if err := e.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, apperr.Internal(fmt.Errorf("counting query results: %w", err))
	}

	selectSQL := fmt.Sprintf("SELECT %s.%s %s%s ORDER BY %s LIMIT ? OFFSET ?",
		baseAlias, spec.idCol, from, whereSQL, strings.Join(orderTerms, ", "))
	selectArgs := append(append([]any{}, args...), q.EffectiveLimit(), q.EffectiveOffset())

	rows, err := e.db.QueryContext(ctx, selectSQL, selectArgs...)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("running entity query: %w", err))
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Internal(fmt.Errorf("scanning entity id: %w", err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("iterating entity ids: %w", err))
	}

	return &Result{EntityType: q.EntityType, IDs: ids, TotalCount: total}, nil
}

// aggPlan is the SQL shape of one aggregation: its select expressions and
// how to turn the scanned values into the final result.
type aggPlan struct {
	exprs    []string
	fn       AggFunc
	leafType fieldType
	decimal  bool
}

func (e *Engine) buildAggPlan(q *Query, c *compiler) (*aggPlan, error) {
	a := q.Aggregation
	plan := &aggPlan{fn: a.Function}

	expr := ""
	if a.Field != "" {
		rp, err := resolvePath(q.EntityType, a.Field)
		if err != nil {
			return nil, err
		}
		alias := c.ensureJoin(rp.steps)
		expr = alias + "." + rp.leaf.column
		plan.leafType = rp.leaf.ftype
		plan.decimal = rp.leaf.ftype == typeDecimal
	}

	switch a.Function {
	case AggCount:
		if expr == "" {
			plan.exprs = []string{"COUNT(*)"}
		} else {
			plan.exprs = []string{fmt.Sprintf("COUNT(%s)", expr)}
		}
	case AggCountDistinct:
		plan.exprs = []string{fmt.Sprintf("COUNT(DISTINCT %s)", expr)}
	case AggSum:
		plan.exprs = []string{fmt.Sprintf("COALESCE(SUM(%s), 0)", expr)}
	case AggAvg:
		if plan.decimal {
			// Decimal averages are computed from exact integer tenths; SQL
			// AVG would detour through binary floats.
			plan.exprs = []string{
				fmt.Sprintf("COALESCE(SUM(%s), 0)", expr),
				fmt.Sprintf("COUNT(%s)", expr),
			}
		} else {
			plan.exprs = []string{fmt.Sprintf("AVG(%s)", expr)}
		}
	case AggMin:
		plan.exprs = []string{fmt.Sprintf("MIN(%s)", expr)}
	case AggMax:
		plan.exprs = []string{fmt.Sprintf("MAX(%s)", expr)}
	}
	return plan, nil
}

// finish converts scanned aggregate cells into the caller-facing value.
func (p *aggPlan) finish(cells []any) any {
	switch p.fn {
	case AggCount, AggCountDistinct:
		return asInt64(cells[0])
	case AggSum:
		if p.decimal {
			return decimal.New(asInt64(cells[0]), -1)
		}
		return asInt64(cells[0])
	case AggAvg:
		if p.decimal {
			count := asInt64(cells[1])
			if count == 0 {
				return nil
			}
			sum := decimal.New(asInt64(cells[0]), -1)
			return sum.Div(decimal.NewFromInt(count)).Round(1)
		}
		return cells[0] // float64 or nil
	case AggMin, AggMax:
		if cells[0] == nil {
			return nil
		}
		if p.decimal {
			return decimal.New(asInt64(cells[0]), -1)
		}
		return cells[0]
	}
	return nil
}

func (e *Engine) runAggregation(ctx context.Context, q *Query, c *compiler, where []string, args []any) (*Result, error) {
	a := q.Aggregation

	plan, err := e.buildAggPlan(q, c)
	if err != nil {
		return nil, err
	}

	var groupExprs []string
	var groupTypes []fieldType
	for _, g := range a.GroupBy {
		rp, err := resolvePath(q.EntityType, g)
		if err != nil {
			return nil, err
		}
		alias := c.ensureJoin(rp.steps)
		groupExprs = append(groupExprs, alias+"."+rp.leaf.column)
		groupTypes = append(groupTypes, rp.leaf.ftype)
	}

	spec := schema[q.EntityType]
	from := fmt.Sprintf("FROM %s %s", spec.table, baseAlias)
	if len(c.joins) > 0 {
		from += " " + strings.Join(c.joins, " ")
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	agg := &AggResult{Function: a.Function, Field: a.Field}

	if len(groupExprs) == 0 {
		sql := fmt.Sprintf("SELECT %s %s%s", strings.Join(plan.exprs, ", "), from, whereSQL)
		cells := make([]any, len(plan.exprs))
		dest := make([]any, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := e.db.QueryRowContext(ctx, sql, args...).Scan(dest...); err != nil {
			return nil, apperr.Internal(fmt.Errorf("running scalar aggregation: %w", err))
		}
		agg.Scalar = plan.finish(cells)
		return &Result{EntityType: q.EntityType, Agg: agg}, nil
	}

	agg.Grouped = true
	groupList := strings.Join(groupExprs, ", ")

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM (SELECT %s %s%s GROUP BY %s)",
		groupList, from, whereSQL, groupList)
	if err := e.db.QueryRowContext(ctx, countSQL, args...).Scan(&agg.TotalGroups); err != nil {
		return nil, apperr.Internal(fmt.Errorf("counting aggregation groups: %w", err))
	}

	sql := fmt.Sprintf("SELECT %s, %s %s%s GROUP BY %s ORDER BY %s LIMIT ? OFFSET ?",
		groupList, strings.Join(plan.exprs, ", "), from, whereSQL, groupList, groupList)
	args = append(append([]any{}, args...), q.EffectiveLimit(), q.EffectiveOffset())

	rows, err := e.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("running grouped aggregation: %w", err))
	}
	defer rows.Close()

	nGroup := len(groupExprs)
	for rows.Next() {
		cells := make([]any, nGroup+len(plan.exprs))
		dest := make([]any, len(cells))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, apperr.Internal(fmt.Errorf("scanning aggregation group: %w", err))
		}
		values := make([]any, nGroup)
		for i := 0; i < nGroup; i++ {
			values[i] = convertGroupValue(cells[i], groupTypes[i])
		}
		agg.Groups = append(agg.Groups, Group{
			Values: values,
			Result: plan.finish(cells[nGroup:]),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("iterating aggregation groups: %w", err))
	}
	return &Result{EntityType: q.EntityType, Agg: agg}, nil
}

// convertGroupValue maps a scanned group key back to its schema-level form.
func convertGroupValue(v any, ft fieldType) any {
	if v == nil {
		return nil
	}
	switch ft {
	case typeDecimal:
		return decimal.New(asInt64(v), -1)
	case typeBool:
		return asInt64(v) != 0
	default:
		return v
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case nil:
		return 0
	}
	return 0
}
