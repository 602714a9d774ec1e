package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrcore-identity/internal/core/employee"
	pgdb "github.com/ogurasousui/hrcore-identity/internal/platform/db/postgres"
	"github.com/ogurasousui/hrcore-identity/internal/platform/logging"
	"github.com/sirupsen/logrus"
)

const (
	employeeUniqueViolationCode = "23505"
	employeeCheckViolationCode  = "23514"
)

var (
	// employeeColumns は scanEmployee の読み取り順です。属性列は型に依らず text で読み取ります。
	employeeColumns = buildEmployeeColumns()

	// normalizedNicknameExpr は name.Normalize と同じ規則で nickname を正規化する式です。
	normalizedNicknameExpr = `btrim(regexp_replace(regexp_replace(lower(nickname), '[^a-z0-9[:space:]-]', '', 'g'), '[[:space:]]+', ' ', 'g'))`
)

func buildEmployeeColumns() string {
	cols := []string{
		"id::text",
		"first_name",
		"last_name",
		"nickname",
		"status",
		"origin",
		"termination_date",
		"termination_reason",
	}
	for _, field := range employee.Fields {
		cols = append(cols, string(field)+"::text")
	}
	cols = append(cols, "created_at", "updated_at")
	return strings.Join(cols, ", ")
}

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	cols := []string{"first_name", "last_name", "nickname", "status", "origin", "created_at", "updated_at"}
	args := []any{
		strings.TrimSpace(e.FirstName),
		strings.TrimSpace(e.LastName),
		nullableString(e.Nickname),
		string(e.Status),
		nullableString(e.Origin),
		e.CreatedAt,
		e.UpdatedAt,
	}
	placeholders := make([]string, 0, len(cols)+len(employee.Fields))
	for i := range cols {
		placeholders = append(placeholders, "$"+strconv.Itoa(i+1))
	}

	for _, field := range employee.Fields {
		if !e.Attributes.Has(field) {
			continue
		}
		args = append(args, e.Attributes.Get(field))
		cols = append(cols, string(field))
		placeholders = append(placeholders, "$"+strconv.Itoa(len(args))+fieldCast(field))
	}

	query := `
        INSERT INTO employees (` + strings.Join(cols, ", ") + `)
        VALUES (` + strings.Join(placeholders, ", ") + `)
        RETURNING ` + employeeColumns

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	created, err := scanEmployee(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// FindByID は退職済みを含めて ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// FindByIDForUpdate は行ロックを取得して社員を取得します。
func (r *EmployeeRepository) FindByIDForUpdate(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
           FOR UPDATE
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByExactName は名・姓の完全一致 (大文字小文字・前後空白を無視) で在籍社員を検索します。
func (r *EmployeeRepository) FindByExactName(ctx context.Context, firstName, lastName string) (*employee.Employee, error) {
	return r.findActive(ctx,
		`lower(btrim(first_name)) = lower(btrim($1)) AND lower(btrim(last_name)) = lower(btrim($2))`,
		firstName, lastName)
}

// FindByNickname は正規化済みの愛称で在籍社員を検索します。
func (r *EmployeeRepository) FindByNickname(ctx context.Context, normalizedNickname string) (*employee.Employee, error) {
	return r.findActive(ctx, `nickname IS NOT NULL AND `+normalizedNicknameExpr+` = $1`, normalizedNickname)
}

// FindByEmail はメールアドレス (大文字小文字を無視) で在籍社員を検索します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	return r.findActive(ctx, `lower(btrim(email)) = lower(btrim($1))`, email)
}

// FindByFullName は "名 姓" の完全一致で在籍社員を検索します。
func (r *EmployeeRepository) FindByFullName(ctx context.Context, fullName string) (*employee.Employee, error) {
	return r.findActive(ctx, `lower(btrim(first_name || ' ' || last_name)) = lower(btrim($1))`, fullName)
}

// FindByPhoneDigits は数字のみに揃えた電話番号で在籍社員を検索します。
func (r *EmployeeRepository) FindByPhoneDigits(ctx context.Context, digits string) (*employee.Employee, error) {
	return r.findActive(ctx, `phone IS NOT NULL AND regexp_replace(phone, '[^0-9]', '', 'g') = $1`, digits)
}

// ListByLastName は姓が一致する在籍社員を登録順に返します。
func (r *EmployeeRepository) ListByLastName(ctx context.Context, lastName string) ([]*employee.Employee, error) {
	return r.list(ctx, `status <> $1 AND lower(btrim(last_name)) = lower(btrim($2))`, string(employee.StatusTerminated), lastName)
}

// ListActive は在籍社員を登録順に返します。
func (r *EmployeeRepository) ListActive(ctx context.Context) ([]*employee.Employee, error) {
	return r.list(ctx, `status <> $1`, string(employee.StatusTerminated))
}

// ApplyUpdates は差分のある属性と登録元のみを更新します。
func (r *EmployeeRepository) ApplyUpdates(ctx context.Context, id string, updates employee.Updates, updatedAt time.Time) error {
	sets := make([]string, 0, len(updates.Fields)+2)
	args := make([]any, 0, len(updates.Fields)+3)

	for _, field := range employee.Fields {
		if !updates.Fields.Has(field) {
			continue
		}
		args = append(args, updates.Fields.Get(field))
		sets = append(sets, string(field)+" = $"+strconv.Itoa(len(args))+fieldCast(field))
	}
	if updates.Origin != nil {
		args = append(args, *updates.Origin)
		sets = append(sets, "origin = $"+strconv.Itoa(len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, updatedAt)
	sets = append(sets, "updated_at = $"+strconv.Itoa(len(args)))
	args = append(args, id)

	query := `
        UPDATE employees
           SET ` + strings.Join(sets, ",\n               ") + `
         WHERE id = $` + strconv.Itoa(len(args))

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, query, args...)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// ReassignReferences は協調テーブルの外部キーを fromID から toID に付け替え、件数を返します。
func (r *EmployeeRepository) ReassignReferences(ctx context.Context, ref employee.CollaboratorTable, fromID, toID string) (int64, error) {
	table := pgx.Identifier{ref.Name}.Sanitize()
	column := pgx.Identifier{ref.Column}.Sanitize()

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `UPDATE `+table+` SET `+column+` = $1 WHERE `+column+` = $2`, toID, fromID)
	if err != nil {
		return 0, translateEmployeePgError(err)
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"table": ref.Name,
		"rows":  tag.RowsAffected(),
	}).Debug("employee references reassigned")
	return tag.RowsAffected(), nil
}

// Retire は社員を退職状態にします。退職日が設定済みなら上書きしません。
func (r *EmployeeRepository) Retire(ctx context.Context, id, reason string, on time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE employees
           SET status = $1,
               termination_reason = $2,
               termination_date = COALESCE(termination_date, $3::date),
               updated_at = now()
         WHERE id = $4
    `, string(employee.StatusTerminated), reason, nullableTime(&on), id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) findOne(ctx context.Context, condition string, args ...any) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE `+condition+`
         ORDER BY created_at, id
         LIMIT 1
    `, args...)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// findActive は退職済みを除外して最初に登録された 1 件を返します。
func (r *EmployeeRepository) findActive(ctx context.Context, condition string, args ...any) (*employee.Employee, error) {
	placeholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, string(employee.StatusTerminated))
	return r.findOne(ctx, condition+` AND status <> `+placeholder, args...)
}

func (r *EmployeeRepository) list(ctx context.Context, condition string, args ...any) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE `+condition+`
         ORDER BY created_at, id
    `, args...)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return employees, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id                string
		firstName         string
		lastName          string
		nickname          sql.NullString
		status            string
		origin            sql.NullString
		terminationDate   sql.NullTime
		terminationReason sql.NullString
		createdAt         time.Time
		updatedAt         time.Time
	)
	attrs := make([]sql.NullString, len(employee.Fields))

	dest := []any{&id, &firstName, &lastName, &nickname, &status, &origin, &terminationDate, &terminationReason}
	for i := range attrs {
		dest = append(dest, &attrs[i])
	}
	dest = append(dest, &createdAt, &updatedAt)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	var terminatedPtr *time.Time
	if terminationDate.Valid {
		t := terminationDate.Time.UTC()
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		terminatedPtr = &date
	}

	attributes := make(employee.Attributes, len(employee.Fields))
	for i, field := range employee.Fields {
		if attrs[i].Valid && strings.TrimSpace(attrs[i].String) != "" {
			attributes[field] = attrs[i].String
		}
	}

	return &employee.Employee{
		ID:                id,
		FirstName:         firstName,
		LastName:          lastName,
		Nickname:          nickname.String,
		Status:            employee.Status(status),
		Origin:            origin.String,
		TerminationDate:   terminatedPtr,
		TerminationReason: terminationReason.String,
		Attributes:        attributes,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}, nil
}

func fieldCast(field employee.Field) string {
	switch field.Kind() {
	case employee.KindDate:
		return "::date"
	case employee.KindDecimal:
		return "::numeric"
	default:
		return ""
	}
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case employeeUniqueViolationCode:
			if pgErr.ConstraintName == "employees_email_key" {
				return employee.ErrEmailTaken
			}
			return err
		case employeeCheckViolationCode:
			switch pgErr.ConstraintName {
			case "employees_status_check":
				return employee.ErrInvalidStatus
			case "employees_first_name_check":
				return employee.ErrInvalidFirstName
			}
		}
	}

	return err
}

func nullableString(value string) any {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
