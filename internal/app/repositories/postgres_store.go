package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/dberrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/logger"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

const (
	searchTextColumn   = "search_text"
	searchVectorColumn = "search_vector"
)

// PostgresStore persists one entity kind in a PostgreSQL table
type PostgresStore[E any] struct {
	DB     *pgxpool.Pool
	schema *Schema[E]
}

// NewPostgresStore creates a store over the schema's table
func NewPostgresStore[E any](db *pgxpool.Pool, schema *Schema[E]) *PostgresStore[E] {
	return &PostgresStore[E]{DB: db, schema: schema}
}

func (s *PostgresStore[E]) psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (s *PostgresStore[E]) selectQuery() squirrel.SelectBuilder {
	return s.psql().Select(s.schema.Columns...).From(s.schema.Table)
}

func (s *PostgresStore[E]) scan(row pgx.Row) (*E, error) {
	e := new(E)
	if err := row.Scan(s.schema.Targets(e)...); err != nil {
		return nil, err
	}
	return e, nil
}

// mapWriteError converts unique violations into conflicts
func (s *PostgresStore[E]) mapWriteError(err error) error {
	if constraint, ok := dberrors.UniqueViolation(err); ok {
		return apperrors.NewConflictError(fmt.Sprintf("%s already exists (%s)", s.schema.Entity, constraint))
	}
	return err
}

// Insert writes a new row
func (s *PostgresStore[E]) Insert(ctx context.Context, e *E) error {
	columns := s.schema.Columns
	values := s.schema.Values(e)
	if s.schema.HasTextIndex() {
		columns = append(append([]string{}, columns...), searchTextColumn)
		values = append(values, s.schema.SearchText(e))
	}

	sql, args, err := s.psql().Insert(s.schema.Table).Columns(columns...).Values(values...).ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error building insert SQL")
		return err
	}

	if _, err := s.DB.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error executing insert query")
		return s.mapWriteError(err)
	}
	return nil
}

// FindByID retrieves a single row by id
func (s *PostgresStore[E]) FindByID(ctx context.Context, id primitive.ObjectID) (*E, error) {
	sql, args, err := s.selectQuery().Where(squirrel.Eq{"id": id.Hex()}).ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error building find by id SQL")
		return nil, err
	}

	e, err := s.scan(s.DB.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %s not found", s.schema.Entity, id.Hex()))
		}
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error scanning row")
		return nil, err
	}
	return e, nil
}

// FindOne retrieves the first row matching filter
func (s *PostgresStore[E]) FindOne(ctx context.Context, filter query.Filter) (*E, error) {
	items, err := s.Find(ctx, query.Query{Filter: filter, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.NewResourceNotFoundError(s.schema.Entity + " not found")
	}
	return items[0], nil
}

// Find retrieves the requested window of matching rows
func (s *PostgresStore[E]) Find(ctx context.Context, q query.Query) ([]*E, error) {
	builder, err := s.where(s.selectQuery(), q.Filter, q.Search)
	if err != nil {
		return nil, err
	}

	for _, sf := range q.Sort {
		f, err := s.schema.sortField(sf.Field)
		if err != nil {
			return nil, err
		}
		dir := "ASC"
		if sf.Desc {
			dir = "DESC"
		}
		builder = builder.OrderBy(f.Column + " " + dir)
	}
	if len(q.Sort) > 0 {
		builder = builder.OrderBy("id " + orderOf(q.Sort[0]))
	}
	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		builder = builder.Offset(uint64(q.Offset))
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error building find SQL")
		return nil, err
	}

	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error executing find query")
		return nil, err
	}
	defer rows.Close()

	out := make([]*E, 0)
	for rows.Next() {
		e, err := s.scan(rows)
		if err != nil {
			logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error scanning row")
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error iterating rows")
		return nil, err
	}
	return out, nil
}

// Count returns the number of rows matching filter and search
func (s *PostgresStore[E]) Count(ctx context.Context, filter query.Filter, search string) (int64, error) {
	builder, err := s.where(s.psql().Select("COUNT(*)").From(s.schema.Table), filter, search)
	if err != nil {
		return 0, err
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error building count query SQL")
		return 0, err
	}

	var total int64
	if err := s.DB.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error executing count query")
		return 0, err
	}
	return total, nil
}

// Update overwrites every column of an existing row except the counters,
// which only change through Increment
func (s *PostgresStore[E]) Update(ctx context.Context, e *E) error {
	counters := make(map[string]bool, len(s.schema.Counters))
	for _, name := range s.schema.Counters {
		counters[s.schema.Fields[name].Column] = true
	}

	values := s.schema.Values(e)
	set := make(map[string]interface{}, len(values))
	var id interface{}
	for i, col := range s.schema.Columns {
		if col == "id" {
			id = values[i]
			continue
		}
		if counters[col] {
			continue
		}
		set[col] = values[i]
	}
	if s.schema.HasTextIndex() {
		set[searchTextColumn] = s.schema.SearchText(e)
	}

	sql, args, err := s.psql().Update(s.schema.Table).SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error building update SQL")
		return err
	}

	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error executing update query")
		return s.mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %v not found", s.schema.Entity, id))
	}
	return nil
}

// Delete removes a row and reports whether it existed
func (s *PostgresStore[E]) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	sql, args, err := s.psql().Delete(s.schema.Table).Where(squirrel.Eq{"id": id.Hex()}).ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error building delete SQL")
		return false, err
	}

	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error executing delete query")
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Increment adds delta to a counter column in a single statement
func (s *PostgresStore[E]) Increment(ctx context.Context, id primitive.ObjectID, field string, delta int64) error {
	if !s.schema.isCounter(field) {
		return fmt.Errorf("%s: %q is not a counter", s.schema.Entity, field)
	}
	f, err := s.schema.field(field)
	if err != nil {
		return err
	}

	sql, args, err := s.psql().Update(s.schema.Table).
		Set(f.Column, squirrel.Expr(f.Column+" + ?", delta)).
		Where(squirrel.Eq{"id": id.Hex()}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error building increment SQL")
		return err
	}

	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Str("field", field).Msg("Error executing increment query")
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %s not found", s.schema.Entity, id.Hex()))
	}
	return nil
}

// UpdateMany sets fields on every matching row
func (s *PostgresStore[E]) UpdateMany(ctx context.Context, filter query.Filter, set map[string]interface{}) (int64, error) {
	builder := s.psql().Update(s.schema.Table)
	for name, v := range set {
		f, err := s.schema.field(name)
		if err != nil {
			return 0, err
		}
		builder = builder.Set(f.Column, dbValue(v))
	}
	if f, ok := s.schema.Fields["updatedAt"]; ok {
		builder = builder.Set(f.Column, time.Now().UTC())
	}

	for _, c := range filter {
		pred, err := s.condition(c)
		if err != nil {
			return 0, err
		}
		builder = builder.Where(pred)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error building update many SQL")
		return 0, err
	}

	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", s.schema.Table).Msg("Error executing update many query")
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore[E]) where(builder squirrel.SelectBuilder, filter query.Filter, search string) (squirrel.SelectBuilder, error) {
	for _, c := range filter {
		pred, err := s.condition(c)
		if err != nil {
			return builder, err
		}
		builder = builder.Where(pred)
	}
	if terms := query.SearchTerms(search); len(terms) > 0 && s.schema.HasTextIndex() {
		// OR across terms matches how a document text index treats several words
		builder = builder.Where(squirrel.Expr(searchVectorColumn+" @@ to_tsquery('simple', ?)", strings.Join(terms, " | ")))
	}
	return builder, nil
}

func (s *PostgresStore[E]) condition(c query.Condition) (squirrel.Sqlizer, error) {
	f, err := s.schema.field(c.Field)
	if err != nil {
		return nil, err
	}
	col, v := f.Column, dbValue(c.Value)

	switch c.Op {
	case query.OpEq, query.OpIn:
		return squirrel.Eq{col: v}, nil
	case query.OpLt:
		return squirrel.Lt{col: v}, nil
	case query.OpLte:
		return squirrel.LtOrEq{col: v}, nil
	case query.OpGt:
		return squirrel.Gt{col: v}, nil
	case query.OpGte:
		return squirrel.GtOrEq{col: v}, nil
	case query.OpMatch:
		return squirrel.Expr(col+" ~* ?", v), nil
	case query.OpOverlaps:
		return squirrel.Expr(col+" && ?", v), nil
	}
	return nil, fmt.Errorf("unsupported operator %q", c.Op)
}

func orderOf(sf query.SortField) string {
	if sf.Desc {
		return "DESC"
	}
	return "ASC"
}
