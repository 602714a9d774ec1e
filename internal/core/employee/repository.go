package employee

import (
	"context"
	"time"
)

// Lookup は社員照合に使う読み取り専用の検索手段です。
// すべての検索は退職済み (Terminated) の社員を除外し、該当が無ければ ErrEmployeeNotFound を返します。
type Lookup interface {
	FindByExactName(ctx context.Context, firstName, lastName string) (*Employee, error)
	FindByNickname(ctx context.Context, normalizedNickname string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	ListByLastName(ctx context.Context, lastName string) ([]*Employee, error)
	FindByFullName(ctx context.Context, fullName string) (*Employee, error)
	FindByPhoneDigits(ctx context.Context, digits string) (*Employee, error)
}

// Repository は社員永続化の抽象です。
type Repository interface {
	Lookup
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	// FindByID は退職済みを含めて ID で社員を取得します。
	FindByID(ctx context.Context, id string) (*Employee, error)
	ApplyUpdates(ctx context.Context, id string, updates Updates, updatedAt time.Time) error
	ListActive(ctx context.Context) ([]*Employee, error)
}

// MergeRepository は重複統合に必要な永続化操作です。
type MergeRepository interface {
	// FindByIDForUpdate は行ロックを取得して社員を取得します。退職済みも対象です。
	FindByIDForUpdate(ctx context.Context, id string) (*Employee, error)
	ApplyUpdates(ctx context.Context, id string, updates Updates, updatedAt time.Time) error
	ReassignReferences(ctx context.Context, ref CollaboratorTable, fromID, toID string) (int64, error)
	Retire(ctx context.Context, id, reason string, on time.Time) error
}

// CollaboratorTable は社員 ID を外部キーとして持つテーブルです。
type CollaboratorTable struct {
	Name   string
	Column string
}

// DefaultReferenceColumn は外部キー列の既定名です。
const DefaultReferenceColumn = "employee_id"
