package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/vigilops/vigil-api/internal/models"
)

// fieldTable is the dynamic per-workspace table whose columns are the custom
// field schema. id and alert_id are reserved; everything else is
// administrator-defined.
const fieldTable = "alert_fields"

var reservedFieldColumns = map[string]bool{
	"id":       true,
	"alert_id": true,
}

// fieldIdent whitelists column names before they are interpolated into DDL
// and DML. Quoting alone is not enough of a guard for caller-supplied
// identifiers.
var fieldIdent = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

var fieldSQLTypes = map[string]string{
	"TEXT":        "TEXT",
	"INTEGER":     "INTEGER",
	"BIGINT":      "BIGINT",
	"NUMERIC":     "NUMERIC",
	"BOOLEAN":     "BOOLEAN",
	"TIMESTAMPTZ": "TIMESTAMPTZ",
	"JSONB":       "JSONB",
}

var dataTypeNames = map[string]string{
	"text":                     "TEXT",
	"integer":                  "INTEGER",
	"bigint":                   "BIGINT",
	"numeric":                  "NUMERIC",
	"boolean":                  "BOOLEAN",
	"timestamp with time zone": "TIMESTAMPTZ",
	"jsonb":                    "JSONB",
}

// FieldRepository bridges alerts to the dynamic custom-field table: column
// definitions are reflected from the live schema, and each alert owns at
// most one value row.
type FieldRepository interface {
	ListFields(ctx context.Context) ([]models.AlertField, error)
	CreateField(ctx context.Context, params models.AlertFieldCreate) error
	UpdateField(ctx context.Context, fieldID string, params models.AlertFieldUpdate) error
	DeleteField(ctx context.Context, fieldID string) error

	GetValues(ctx context.Context, alertID string) (map[string]any, error)
	CreateValues(ctx context.Context, alertID string, values map[string]any) error
	UpdateValues(ctx context.Context, rowID string, values map[string]any) error
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type fieldRepository struct {
	db *sql.DB
}

func NewFieldRepository(db *sql.DB) FieldRepository {
	return &fieldRepository{db: db}
}

func (r *fieldRepository) ListFields(ctx context.Context) ([]models.AlertField, error) {
	const query = `
		SELECT c.column_name, c.data_type, c.is_nullable, c.column_default, d.description
		FROM information_schema.columns c
		LEFT JOIN pg_catalog.pg_statio_all_tables st
			ON st.schemaname = c.table_schema AND st.relname = c.table_name
		LEFT JOIN pg_catalog.pg_description d
			ON d.objoid = st.relid AND d.objsubid = c.ordinal_position
		WHERE c.table_schema = 'public' AND c.table_name = $1
		ORDER BY c.ordinal_position
	`
	rows, err := r.db.QueryContext(ctx, query, fieldTable)
	if err != nil {
		return nil, errors.Wrap(err, "reflect field columns")
	}
	defer rows.Close()

	fields := make([]models.AlertField, 0)
	for rows.Next() {
		var (
			name, dataType, nullable string
			columnDefault, comment   sql.NullString
		)
		if err := rows.Scan(&name, &dataType, &nullable, &columnDefault, &comment); err != nil {
			return nil, errors.Wrap(err, "scan field column")
		}
		if reservedFieldColumns[name] {
			continue
		}
		f := models.AlertField{
			ID:       name,
			Type:     apiTypeName(dataType),
			Nullable: nullable == "YES",
		}
		if columnDefault.Valid {
			f.Default = &columnDefault.String
		}
		if comment.Valid {
			f.Description = &comment.String
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func (r *fieldRepository) CreateField(ctx context.Context, params models.AlertFieldCreate) error {
	if err := validateFieldName(params.ID); err != nil {
		return err
	}
	sqlType, ok := fieldSQLTypes[strings.ToUpper(params.Type)]
	if !ok {
		return &models.ValidationError{Msg: fmt.Sprintf("unsupported field type %q", params.Type)}
	}

	// Always nullable, regardless of the requested flag: alerts created
	// before the field existed must remain valid.
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
		pq.QuoteIdentifier(fieldTable), pq.QuoteIdentifier(params.ID), sqlType)
	if params.Default != nil {
		stmt += " DEFAULT " + pq.QuoteLiteral(*params.Default)
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrapf(err, "create field %s", params.ID)
	}

	if params.Description != nil {
		if err := r.setFieldComment(ctx, params.ID, *params.Description); err != nil {
			return err
		}
	}
	return nil
}

func (r *fieldRepository) UpdateField(ctx context.Context, fieldID string, params models.AlertFieldUpdate) error {
	if err := validateFieldName(fieldID); err != nil {
		return err
	}
	current := fieldID

	if params.Type != nil {
		sqlType, ok := fieldSQLTypes[strings.ToUpper(*params.Type)]
		if !ok {
			return &models.ValidationError{Msg: fmt.Sprintf("unsupported field type %q", *params.Type)}
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s",
			pq.QuoteIdentifier(fieldTable), pq.QuoteIdentifier(current),
			sqlType, pq.QuoteIdentifier(current), sqlType)
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return definitionError(err, fieldID)
		}
	}

	if params.Description != nil {
		if err := r.setFieldComment(ctx, current, *params.Description); err != nil {
			return definitionError(err, fieldID)
		}
	}

	if params.ID != nil && *params.ID != current {
		if err := validateFieldName(*params.ID); err != nil {
			return err
		}
		stmt := fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
			pq.QuoteIdentifier(fieldTable), pq.QuoteIdentifier(current), pq.QuoteIdentifier(*params.ID))
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return definitionError(err, fieldID)
		}
	}
	return nil
}

func (r *fieldRepository) DeleteField(ctx context.Context, fieldID string) error {
	if err := validateFieldName(fieldID); err != nil {
		return err
	}
	stmt := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s",
		pq.QuoteIdentifier(fieldTable), pq.QuoteIdentifier(fieldID))
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return definitionError(err, fieldID)
	}
	return nil
}

func (r *fieldRepository) setFieldComment(ctx context.Context, fieldID, description string) error {
	stmt := fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s",
		pq.QuoteIdentifier(fieldTable), pq.QuoteIdentifier(fieldID), pq.QuoteLiteral(description))
	_, err := r.db.ExecContext(ctx, stmt)
	return errors.Wrapf(err, "comment field %s", fieldID)
}

func (r *fieldRepository) GetValues(ctx context.Context, alertID string) (map[string]any, error) {
	_, values, err := getFieldValues(ctx, r.db, alertID)
	return values, err
}

func (r *fieldRepository) CreateValues(ctx context.Context, alertID string, values map[string]any) error {
	_, err := createFieldValues(ctx, r.db, alertID, values)
	return err
}

func (r *fieldRepository) UpdateValues(ctx context.Context, rowID string, values map[string]any) error {
	return updateFieldValues(ctx, r.db, rowID, values)
}

// getFieldValues returns the field row id and its full column-value map, or
// ("", nil, nil) when the alert has no field row.
func getFieldValues(ctx context.Context, q dbtx, alertID string) (string, map[string]any, error) {
	query := fmt.Sprintf("SELECT f.id, row_to_json(f)::text FROM %s f WHERE f.alert_id = $1",
		pq.QuoteIdentifier(fieldTable))
	var rowID, rowJSON string
	err := q.QueryRowContext(ctx, query, alertID).Scan(&rowID, &rowJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, nil
		}
		return "", nil, errors.Wrap(err, "get field values")
	}

	values := make(map[string]any)
	if err := json.Unmarshal([]byte(rowJSON), &values); err != nil {
		return "", nil, errors.Wrap(err, "decode field row")
	}
	for col := range reservedFieldColumns {
		delete(values, col)
	}
	return rowID, values, nil
}

// createFieldValues inserts exactly one field row for an alert. A duplicate
// row surfaces as ErrFieldRowExists, an unknown column as UnknownFieldError.
func createFieldValues(ctx context.Context, q dbtx, alertID string, values map[string]any) (string, error) {
	keys, err := fieldValueKeys(values)
	if err != nil {
		return "", err
	}

	rowID := uuid.NewString()
	columns := []string{"id", "alert_id"}
	args := []any{rowID, alertID}
	for _, k := range keys {
		columns = append(columns, pq.QuoteIdentifier(k))
		args = append(args, fieldValueArg(values[k]))
	}
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(fieldTable), strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	if _, err := q.ExecContext(ctx, stmt, args...); err != nil {
		return "", classifyFieldWriteError(err, firstKey(keys))
	}
	return rowID, nil
}

// updateFieldValues merges the supplied keys into an existing row; columns
// not mentioned keep their values.
func updateFieldValues(ctx context.Context, q dbtx, rowID string, values map[string]any) error {
	keys, err := fieldValueKeys(values)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	assignments := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+1)
	for i, k := range keys {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(k), i+1))
		args = append(args, fieldValueArg(values[k]))
	}
	args = append(args, rowID)

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		pq.QuoteIdentifier(fieldTable), strings.Join(assignments, ", "), len(args))
	res, err := q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return classifyFieldWriteError(err, firstKey(keys))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrFieldRowNotFound
	}
	return nil
}

func fieldValueKeys(values map[string]any) ([]string, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		if err := validateFieldValueName(k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// fieldValueArg adapts a decoded JSON value for the driver; structured
// values target JSONB columns and are re-encoded.
func fieldValueArg(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		b, _ := json.Marshal(v)
		return b
	default:
		return v
	}
}

func validateFieldName(name string) error {
	if !fieldIdent.MatchString(name) {
		return &models.ValidationError{Msg: fmt.Sprintf("invalid field name %q", name)}
	}
	if reservedFieldColumns[name] {
		return &models.ValidationError{Msg: fmt.Sprintf("field name %q is reserved", name)}
	}
	return nil
}

// validateFieldValueName rejects malformed keys on the value-write path as
// unknown fields so callers see the same taxonomy as a missing column.
func validateFieldValueName(name string) error {
	if !fieldIdent.MatchString(name) || reservedFieldColumns[name] {
		return &UnknownFieldError{Field: name, Detail: "not a valid field name"}
	}
	return nil
}

// definitionError maps an undefined column on the definition-mutation path
// to the not-found sentinel instead of the value-write taxonomy.
func definitionError(err error, fieldID string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "undefined_column" {
		return ErrFieldNotFound
	}
	return errors.Wrapf(err, "field %s", fieldID)
}

func firstKey(keys []string) string {
	if len(keys) > 0 {
		return keys[0]
	}
	return ""
}

func apiTypeName(dataType string) string {
	if name, ok := dataTypeNames[dataType]; ok {
		return name
	}
	return strings.ToUpper(dataType)
}
