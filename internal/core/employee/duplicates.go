package employee

import (
	"sort"

	"github.com/ogurasousui/hrcore-identity/internal/core/name"
)

// CandidatePair は同一人物の可能性がある社員の組です。統合は行いません。
type CandidatePair struct {
	Keep      *Employee
	Duplicate *Employee
}

// FindDuplicateCandidates は氏名が類似する在籍社員の組を列挙します。
// 登録元がオンボーディング等の正式な社員を Keep 側に、手入力・未設定の社員を Duplicate 側に置きます。
// 各社員は最初に見つかった組にのみ含まれます。
func FindDuplicateCandidates(employees []*Employee) []CandidatePair {
	active := make([]*Employee, 0, len(employees))
	for _, e := range employees {
		if e != nil && !e.IsRetired() {
			active = append(active, e)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].LastName != active[j].LastName {
			return active[i].LastName < active[j].LastName
		}
		if active[i].FirstName != active[j].FirstName {
			return active[i].FirstName < active[j].FirstName
		}
		return active[i].ID < active[j].ID
	})

	paired := make(map[string]bool, len(active))
	var pairs []CandidatePair

	for i, a := range active {
		if paired[a.ID] {
			continue
		}
		for _, b := range active[i+1:] {
			if paired[b.ID] {
				continue
			}
			if !name.NamesSimilar(a.FullName(), b.FullName()) {
				continue
			}

			keep, dup := a, b
			if isAuthoritative(b) && !isAuthoritative(a) {
				keep, dup = b, a
			}
			pairs = append(pairs, CandidatePair{Keep: keep, Duplicate: dup})
			paired[a.ID] = true
			paired[b.ID] = true
			break
		}
	}

	return pairs
}

func isAuthoritative(e *Employee) bool {
	return !canOverwrite(e, SourceTimecard)
}
