package employee

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// SyncAction は取り込み記録 1 件の処理結果です。
type SyncAction string

const (
	SyncCreated   SyncAction = "created"
	SyncUpdated   SyncAction = "updated"
	SyncUnchanged SyncAction = "unchanged"
	SyncSkipped   SyncAction = "skipped"
	SyncFailed    SyncAction = "failed"
)

// SyncResult は取り込み記録 1 件の結果です。
type SyncResult struct {
	Row        int
	Name       string
	Action     SyncAction
	EmployeeID string
	Strategy   Strategy
	Fields     []Field
	Err        error
}

// SyncSummary は取り込み全体の集計です。
type SyncSummary struct {
	Results []SyncResult
}

// Count は指定した結果の件数を返します。
func (s *SyncSummary) Count(action SyncAction) int {
	n := 0
	for _, r := range s.Results {
		if r.Action == action {
			n++
		}
	}
	return n
}

// SyncOptions は取り込みの動作設定です。
type SyncOptions struct {
	// DryRun が真なら照合と差分計算のみを行い、書き込みません。
	DryRun bool
}

// Syncer は取り込み記録を既存社員に照合し、差分の反映または新規作成を行います。
type Syncer struct {
	repo     Repository
	resolver *Resolver
	clock    Clock
	tx       TransactionManager
	logger   *logrus.Entry
}

// NewSyncer は Syncer を生成します。
func NewSyncer(repo Repository, resolver *Resolver, clock Clock, tx TransactionManager, logger *logrus.Entry) *Syncer {
	return &Syncer{
		repo:     repo,
		resolver: resolver,
		clock:    orRealClock(clock),
		tx:       orNoopTx(tx),
		logger:   orDiscardLogger(logger),
	}
}

// Sync は記録を 1 件ずつ独立したトランザクションで処理します。
// 1 件の失敗は結果に記録され、残りの処理は継続します。
func (s *Syncer) Sync(ctx context.Context, records []IncomingRecord, opts SyncOptions) (*SyncSummary, error) {
	summary := &SyncSummary{Results: make([]SyncResult, 0, len(records))}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := s.syncOne(ctx, rec, opts)
		if result.Err != nil {
			s.logger.WithFields(logrus.Fields{"row": result.Row, "name": result.Name}).WithError(result.Err).Warn("import record failed")
		}
		summary.Results = append(summary.Results, result)
	}

	s.logger.WithFields(logrus.Fields{
		"created":   summary.Count(SyncCreated),
		"updated":   summary.Count(SyncUpdated),
		"unchanged": summary.Count(SyncUnchanged),
		"skipped":   summary.Count(SyncSkipped),
		"failed":    summary.Count(SyncFailed),
		"dry_run":   opts.DryRun,
	}).Info("import finished")

	return summary, nil
}

func (s *Syncer) syncOne(ctx context.Context, rec IncomingRecord, opts SyncOptions) SyncResult {
	result := SyncResult{Row: rec.Row, Name: rec.DisplayName()}

	if !isValidSource(rec.Source) {
		result.Action = SyncFailed
		result.Err = fmt.Errorf("%w: %q", ErrInvalidSource, rec.Source)
		return result
	}

	first, _ := rec.NameParts()
	if first == "" {
		result.Action = SyncSkipped
		result.Err = ErrInvalidFirstName
		return result
	}

	run := s.tx.WithinReadWrite
	if opts.DryRun {
		run = s.tx.WithinReadOnly
	}

	err := run(ctx, func(txCtx context.Context) error {
		match, err := s.resolver.Resolve(txCtx, rec)
		if err != nil {
			return err
		}

		if match == nil {
			result.Action = SyncCreated
			emp := newEmployeeFromRecord(rec, s.clock)
			if err := emp.Validate(); err != nil {
				return err
			}
			if opts.DryRun {
				return nil
			}
			created, err := s.repo.Create(txCtx, emp)
			if err != nil {
				return err
			}
			result.EmployeeID = created.ID
			return nil
		}

		result.EmployeeID = match.Employee.ID
		result.Strategy = match.Strategy

		updates := MergeFields(match.Employee, rec)
		if updates.IsEmpty() {
			result.Action = SyncUnchanged
			return nil
		}

		result.Action = SyncUpdated
		for _, field := range SourceMergeFields {
			if updates.Fields.Has(field) {
				result.Fields = append(result.Fields, field)
			}
		}
		if opts.DryRun {
			return nil
		}
		return s.repo.ApplyUpdates(txCtx, match.Employee.ID, updates, s.clock.Now())
	})
	if err != nil {
		result.Action = SyncFailed
		result.Err = err
	}

	return result
}

func newEmployeeFromRecord(rec IncomingRecord, clock Clock) *Employee {
	first, last := rec.NameParts()
	now := clock.Now()

	attrs := make(Attributes, len(Fields))
	for _, field := range Fields {
		if v := rec.attribute(field); v != "" {
			attrs[field] = v
		}
	}

	origin := string(rec.Source)
	if rec.Source == SourceOnboarding && strings.TrimSpace(rec.OriginTag) != "" {
		origin = strings.TrimSpace(rec.OriginTag)
	}

	return &Employee{
		FirstName:  first,
		LastName:   last,
		Nickname:   valueOf(rec.Nickname),
		Status:     StatusActive,
		Origin:     origin,
		Attributes: attrs.Normalize(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func isValidSource(source Source) bool {
	switch source {
	case SourceTimecard, SourceOnboarding, SourceCommission:
		return true
	default:
		return false
	}
}
