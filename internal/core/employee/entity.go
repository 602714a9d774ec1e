package employee

import (
	"fmt"
	"strings"
	"time"
)

// Status は社員の状態を表します。
type Status string

const (
	StatusActive     Status = "Active"
	StatusOnLeave    Status = "On Leave"
	StatusTerminated Status = "Terminated"
)

// OriginManual は手入力で作成された社員を表す登録元です。
const OriginManual = "Manual"

// Employee は社員エンティティです。
type Employee struct {
	ID                string
	FirstName         string
	LastName          string
	Nickname          string
	Status            Status
	Origin            string
	TerminationDate   *time.Time
	TerminationReason string
	Attributes        Attributes
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FullName は "名 姓" 形式の氏名を返します。
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Email はメールアドレスを返します。
func (e *Employee) Email() string {
	return e.Attributes.Get(FieldEmail)
}

// Phone は電話番号を返します。
func (e *Employee) Phone() string {
	return e.Attributes.Get(FieldPhone)
}

// IsRetired は社員が退職 (統合済みを含む) 状態かを返します。
func (e *Employee) IsRetired() bool {
	return e.Status == StatusTerminated
}

// Validate は永続化前の社員の必須項目を検証します。
func (e *Employee) Validate() error {
	if strings.TrimSpace(e.FirstName) == "" {
		return ErrInvalidFirstName
	}
	if !isValidStatus(e.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}
	return nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusOnLeave, StatusTerminated:
		return true
	default:
		return false
	}
}

// Source は取り込みデータの出所を表します。
type Source string

const (
	SourceTimecard   Source = "timecard"
	SourceOnboarding Source = "onboarding"
	SourceCommission Source = "commission"
)

// ParseSource は文字列を Source に変換します。
func ParseSource(raw string) (Source, error) {
	source := Source(strings.ToLower(strings.TrimSpace(raw)))
	if !isValidSource(source) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, raw)
	}
	return source, nil
}

// IncomingRecord は取り込み元から届いた社員の識別情報です。
// 省略可能な項目はポインタで表し、未設定と空文字を区別します。
type IncomingRecord struct {
	Source     Source
	FirstName  *string
	LastName   *string
	FullName   *string
	Nickname   *string
	Email      *string
	Phone      *string
	OriginTag  string
	Attributes Attributes
	// Row は取り込み元ファイル上の行番号です。0 は不明を表します。
	Row int
}

// NameParts は記録から名と姓を導出します。
// 名・姓が明示されていればそれを使い、無ければ氏名を先頭トークンと残りに分割します。
func (r IncomingRecord) NameParts() (first, last string) {
	first = valueOf(r.FirstName)
	last = valueOf(r.LastName)
	if first != "" || last != "" {
		return first, last
	}

	parts := strings.Fields(valueOf(r.FullName))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// DisplayName はログ出力用の氏名を返します。
func (r IncomingRecord) DisplayName() string {
	if full := valueOf(r.FullName); full != "" {
		return full
	}
	first, last := r.NameParts()
	return strings.TrimSpace(first + " " + last)
}

// attribute は記録の属性値を返します。メール・電話は専用項目を優先します。
func (r IncomingRecord) attribute(field Field) string {
	switch field {
	case FieldEmail:
		if v := valueOf(r.Email); v != "" {
			return v
		}
	case FieldPhone:
		if v := valueOf(r.Phone); v != "" {
			return v
		}
	}
	return r.Attributes.Get(field)
}

// StringPtr は文字列のポインタを返します。空白のみの値は nil になります。
func StringPtr(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func valueOf(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
