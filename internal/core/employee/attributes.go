package employee

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field は統合対象となる社員属性です。値は employees テーブルの列名と一致します。
type Field string

const (
	FieldEmail                 Field = "email"
	FieldPhone                 Field = "phone"
	FieldGender                Field = "gender"
	FieldBirthDate             Field = "birth_date"
	FieldHireDate              Field = "hire_date"
	FieldRoleTitle             Field = "role_title"
	FieldFullAddress           Field = "full_address"
	FieldSINNumber             Field = "sin_number"
	FieldSINExpiryDate         Field = "sin_expiry_date"
	FieldBankName              Field = "bank_name"
	FieldBankTransitNumber     Field = "bank_transit_number"
	FieldBankAccountNumber     Field = "bank_account_number"
	FieldEmergencyContactName  Field = "emergency_contact_name"
	FieldEmergencyContactPhone Field = "emergency_contact_phone"
	FieldContractStatus        Field = "contract_status"
	FieldContractSignedDate    Field = "contract_signed_date"
	FieldEmploymentType        Field = "employment_type"
	FieldDepartmentID          Field = "department_id"
	FieldHourlyRate            Field = "hourly_rate"
)

// FieldKind は属性値の型です。
type FieldKind int

const (
	KindText FieldKind = iota
	KindDate
	KindDecimal
)

const dateLayout = "2006-01-02"

// Fields は全属性を列順で並べたものです。
var Fields = []Field{
	FieldEmail,
	FieldPhone,
	FieldGender,
	FieldBirthDate,
	FieldHireDate,
	FieldRoleTitle,
	FieldFullAddress,
	FieldSINNumber,
	FieldSINExpiryDate,
	FieldBankName,
	FieldBankTransitNumber,
	FieldBankAccountNumber,
	FieldEmergencyContactName,
	FieldEmergencyContactPhone,
	FieldContractStatus,
	FieldContractSignedDate,
	FieldEmploymentType,
	FieldDepartmentID,
	FieldHourlyRate,
}

// SourceMergeFields は取り込み時に FieldMerger が扱う属性です。
// 性別は取り込み元に含まれないため対象外です。
var SourceMergeFields = []Field{
	FieldEmail,
	FieldPhone,
	FieldBirthDate,
	FieldHireDate,
	FieldRoleTitle,
	FieldFullAddress,
	FieldSINNumber,
	FieldSINExpiryDate,
	FieldBankName,
	FieldBankTransitNumber,
	FieldBankAccountNumber,
	FieldEmergencyContactName,
	FieldEmergencyContactPhone,
	FieldContractStatus,
	FieldContractSignedDate,
	FieldEmploymentType,
	FieldDepartmentID,
	FieldHourlyRate,
}

// DuplicateMergeFields は重複統合時に複製元から補完する属性です。
// メールアドレスは社員ごとに一意なため補完しません。
var DuplicateMergeFields = []Field{
	FieldPhone,
	FieldGender,
	FieldBirthDate,
	FieldHireDate,
	FieldRoleTitle,
	FieldHourlyRate,
	FieldFullAddress,
	FieldEmergencyContactName,
	FieldEmergencyContactPhone,
	FieldSINNumber,
	FieldSINExpiryDate,
	FieldBankName,
	FieldBankTransitNumber,
	FieldBankAccountNumber,
	FieldContractStatus,
	FieldContractSignedDate,
	FieldEmploymentType,
	FieldDepartmentID,
}

// Kind は属性値の型を返します。
func (f Field) Kind() FieldKind {
	switch f {
	case FieldBirthDate, FieldHireDate, FieldSINExpiryDate, FieldContractSignedDate:
		return KindDate
	case FieldHourlyRate:
		return KindDecimal
	default:
		return KindText
	}
}

// IsKnown は定義済みの属性かを返します。
func (f Field) IsKnown() bool {
	for _, known := range Fields {
		if known == f {
			return true
		}
	}
	return false
}

// ParseField は列名や見出しから属性を解決します。
func ParseField(raw string) (Field, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	f := Field(key)
	if !f.IsKnown() {
		return "", false
	}
	return f, true
}

// Attributes は社員の補助属性です。空文字の値は未設定として扱います。
type Attributes map[Field]string

// Get は属性値を返します。
func (a Attributes) Get(f Field) string {
	if a == nil {
		return ""
	}
	return strings.TrimSpace(a[f])
}

// Has は属性が設定済みかを返します。
func (a Attributes) Has(f Field) bool {
	return a.Get(f) != ""
}

// Clone は属性の複製を返します。
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Normalize は型に応じて値を正規化した属性を返します。
// 解釈できない値と未知の属性は取り除かれます。
func (a Attributes) Normalize() Attributes {
	out := make(Attributes, len(a))
	for field, raw := range a {
		if !field.IsKnown() {
			continue
		}
		if v, ok := NormalizeValue(field, raw); ok {
			out[field] = v
		}
	}
	return out
}

// NormalizeValue は 1 つの属性値を正規化します。
func NormalizeValue(field Field, raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}

	switch field.Kind() {
	case KindDate:
		d, ok := parseDate(value)
		if !ok {
			return "", false
		}
		return d.Format(dateLayout), true
	case KindDecimal:
		cleaned := strings.NewReplacer("$", "", ",", "").Replace(value)
		amount, err := decimal.NewFromString(cleaned)
		if err != nil || amount.IsNegative() {
			return "", false
		}
		return amount.StringFixed(2), true
	default:
		if field == FieldEmail {
			return strings.ToLower(value), true
		}
		return value, true
	}
}

var dateLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01-02-2006",
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	// 表計算ソフトのシリアル日付
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial >= 20000 && serial <= 80000 {
		base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return base.AddDate(0, 0, int(serial)), true
	}
	return time.Time{}, false
}
