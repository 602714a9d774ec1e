package employee

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// TableCount はテーブルごとの付け替え件数です。
type TableCount struct {
	Table string
	Rows  int64
}

// MergeReport は重複統合の結果です。統合が完全に成功した場合のみ返されます。
type MergeReport struct {
	RunID        string
	KeepID       string
	DuplicateID  string
	CopiedFields []Field
	Reassigned   []TableCount
	RetiredOn    time.Time
	// Kept は欠損属性を補完した後の残す側の社員です。
	Kept *Employee
}

// TotalReassigned は付け替えた行数の合計を返します。
func (r *MergeReport) TotalReassigned() int64 {
	var total int64
	for _, c := range r.Reassigned {
		total += c.Rows
	}
	return total
}

// Merger はオペレーターが確認済みの重複社員を 1 人に統合します。
type Merger struct {
	repo   MergeRepository
	tables []CollaboratorTable
	clock  Clock
	tx     TransactionManager
	logger *logrus.Entry
}

// NewMerger は Merger を生成します。tables は外部キーを付け替えるテーブルの一覧です。
func NewMerger(repo MergeRepository, tables []CollaboratorTable, clock Clock, tx TransactionManager, logger *logrus.Entry) (*Merger, error) {
	normalized, err := NormalizeCollaboratorTables(tables)
	if err != nil {
		return nil, err
	}
	return &Merger{
		repo:   repo,
		tables: normalized,
		clock:  orRealClock(clock),
		tx:     orNoopTx(tx),
		logger: orDiscardLogger(logger),
	}, nil
}

// NormalizeCollaboratorTables はテーブル名と列名を検証し、列名の既定値を補います。
func NormalizeCollaboratorTables(tables []CollaboratorTable) ([]CollaboratorTable, error) {
	out := make([]CollaboratorTable, 0, len(tables))
	seen := make(map[CollaboratorTable]struct{}, len(tables))
	for _, t := range tables {
		table := CollaboratorTable{
			Name:   strings.ToLower(strings.TrimSpace(t.Name)),
			Column: strings.ToLower(strings.TrimSpace(t.Column)),
		}
		if table.Column == "" {
			table.Column = DefaultReferenceColumn
		}
		if !identifierPattern.MatchString(table.Name) || !identifierPattern.MatchString(table.Column) {
			return nil, fmt.Errorf("%w: %q.%q", ErrInvalidTable, t.Name, t.Column)
		}
		if table.Name == "employees" {
			return nil, fmt.Errorf("%w: employees cannot reference itself", ErrInvalidTable)
		}
		if _, dup := seen[table]; dup {
			continue
		}
		seen[table] = struct{}{}
		out = append(out, table)
	}
	return out, nil
}

// Merge は duplicateID の社員を keepID の社員に統合します。
//
// 欠けている属性の補完、全協調テーブルの外部キー付け替え、複製側の退職化を 1 トランザクションで行い、
// 途中で失敗した場合はすべてロールバックされます。同じ組で再実行しても追加の変更は発生しません。
func (m *Merger) Merge(ctx context.Context, keepID, duplicateID string) (*MergeReport, error) {
	keep, err := normalizeID(keepID)
	if err != nil {
		return nil, fmt.Errorf("keep id: %w", err)
	}
	dup, err := normalizeID(duplicateID)
	if err != nil {
		return nil, fmt.Errorf("duplicate id: %w", err)
	}
	if keep == dup {
		return nil, ErrSameEmployee
	}

	report := &MergeReport{
		RunID:       uuid.NewString(),
		KeepID:      keep,
		DuplicateID: dup,
	}
	log := m.logger.WithFields(logrus.Fields{"run_id": report.RunID, "keep_id": keep, "duplicate_id": dup})

	if err := m.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		keepEmp, dupEmp, err := m.lockPair(txCtx, keep, dup)
		if err != nil {
			return err
		}
		if keepEmp.IsRetired() {
			return fmt.Errorf("keep employee %s: %w", keep, ErrKeepRetired)
		}

		now := m.clock.Now()

		missing := missingFields(keepEmp, dupEmp)
		if !missing.IsEmpty() {
			if err := m.repo.ApplyUpdates(txCtx, keep, missing, now); err != nil {
				return mergeStepError("copy missing fields", err)
			}
			missing.Apply(keepEmp)
			for _, field := range DuplicateMergeFields {
				if missing.Fields.Has(field) {
					report.CopiedFields = append(report.CopiedFields, field)
				}
			}
		}

		report.Reassigned = make([]TableCount, 0, len(m.tables))
		for _, table := range m.tables {
			rows, err := m.repo.ReassignReferences(txCtx, table, dup, keep)
			if err != nil {
				return mergeStepError("reassign "+table.Name, err)
			}
			report.Reassigned = append(report.Reassigned, TableCount{Table: table.Name, Rows: rows})
		}

		reason := fmt.Sprintf("Merged with employee ID %s (duplicate)", keep)
		if err := m.repo.Retire(txCtx, dup, reason, dateOnly(now)); err != nil {
			return mergeStepError("retire duplicate", err)
		}
		report.RetiredOn = dateOnly(now)
		report.Kept = keepEmp
		return nil
	}); err != nil {
		log.WithError(err).Error("duplicate merge rolled back")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"copied_fields": len(report.CopiedFields),
		"reassigned":    report.TotalReassigned(),
	}).Info("duplicate merged")

	return report, nil
}

func missingFields(keep, dup *Employee) Updates {
	updates := Updates{Fields: Attributes{}}
	for _, field := range DuplicateMergeFields {
		if !keep.Attributes.Has(field) && dup.Attributes.Has(field) {
			updates.Fields[field] = dup.Attributes.Get(field)
		}
	}
	return updates
}

// lockPair は ID の昇順で両社員の行をロックします。
// 逆順の統合が同時に走ってもデッドロックしません。
func (m *Merger) lockPair(ctx context.Context, keep, dup string) (*Employee, *Employee, error) {
	order := []string{keep, dup}
	if dup < keep {
		order = []string{dup, keep}
	}

	locked := make(map[string]*Employee, len(order))
	for _, id := range order {
		emp, err := m.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			role := "duplicate"
			if id == keep {
				role = "keep"
			}
			return nil, nil, fmt.Errorf("%s employee %s: %w", role, id, err)
		}
		locked[id] = emp
	}
	return locked[keep], locked[dup], nil
}

func mergeStepError(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMergeFailed, step, err)
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidID
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}
