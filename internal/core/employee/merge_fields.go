package employee

import "strings"

// Updates は既存社員に適用する差分です。
type Updates struct {
	Fields Attributes
	// Origin が nil 以外なら登録元 (onboarding_source) を更新します。
	Origin *string
}

// IsEmpty は適用すべき差分が無いかを返します。
func (u Updates) IsEmpty() bool {
	return len(u.Fields) == 0 && u.Origin == nil
}

// MergeFields は取り込み記録から既存社員への最小の更新差分を求めます。
//
// 既存値が空なら常に取り込み値を採用します。既存値がある場合、オンボーディングは常に上書きし、
// タイムカードは既存の登録元がタイムカードまたは手入力 (未設定) のときのみ上書きします。
// 値を空にする更新は生成しません。
func MergeFields(existing *Employee, rec IncomingRecord) Updates {
	updates := Updates{Fields: Attributes{}}
	if existing == nil {
		return updates
	}

	incoming := make(Attributes, len(SourceMergeFields))
	for _, field := range SourceMergeFields {
		if v := rec.attribute(field); v != "" {
			incoming[field] = v
		}
	}
	incoming = incoming.Normalize()

	overwrite := canOverwrite(existing, rec.Source)
	for _, field := range SourceMergeFields {
		value := incoming.Get(field)
		if value == "" {
			continue
		}

		current := existing.Attributes.Get(field)
		switch {
		case current == "":
			updates.Fields[field] = value
		case current == value:
		case overwrite:
			updates.Fields[field] = value
		}
	}

	if rec.Source == SourceOnboarding {
		if tag := strings.TrimSpace(rec.OriginTag); tag != "" && tag != existing.Origin {
			updates.Origin = &tag
		}
	}

	return updates
}

func canOverwrite(existing *Employee, source Source) bool {
	switch source {
	case SourceOnboarding:
		return true
	case SourceTimecard:
		origin := strings.TrimSpace(existing.Origin)
		return origin == "" ||
			strings.EqualFold(origin, OriginManual) ||
			strings.EqualFold(origin, string(SourceTimecard))
	default:
		return false
	}
}

// Apply は差分を社員に反映します。永続化は行いません。
// 属性マップは複製してから書き換えるため、呼び出し元と共有していても影響しません。
func (u Updates) Apply(emp *Employee) {
	if emp == nil {
		return
	}
	if len(u.Fields) > 0 {
		emp.Attributes = emp.Attributes.Clone()
		if emp.Attributes == nil {
			emp.Attributes = Attributes{}
		}
	}
	for field, value := range u.Fields {
		if strings.TrimSpace(value) == "" {
			continue
		}
		emp.Attributes[field] = value
	}
	if u.Origin != nil {
		emp.Origin = *u.Origin
	}
}
