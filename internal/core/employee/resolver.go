package employee

import (
	"context"
	"errors"
	"strings"

	"github.com/ogurasousui/hrcore-identity/internal/core/name"
	"github.com/sirupsen/logrus"
)

// Strategy は照合に成功した手段です。
type Strategy string

const (
	StrategyExactName  Strategy = "exact_name"
	StrategyNickname   Strategy = "nickname"
	StrategyEmail      Strategy = "email"
	StrategyFuzzyName  Strategy = "fuzzy_name"
	StrategySingleName Strategy = "single_name"
	StrategyPhone      Strategy = "phone"
)

const minPhoneDigits = 10

// Match は照合結果です。
type Match struct {
	Employee *Employee
	Strategy Strategy
}

// ResolverOptions は照合の設定です。
type ResolverOptions struct {
	// PlaceholderEmailDomains に属するメールアドレスは本人を識別しないものとして扱います。
	PlaceholderEmailDomains []string
}

// Resolver は取り込み記録が既存社員を指すかを判定します。
type Resolver struct {
	lookup             Lookup
	placeholderDomains []string
	logger             *logrus.Entry
}

// NewResolver は Resolver を生成します。
func NewResolver(lookup Lookup, opts ResolverOptions, logger *logrus.Entry) *Resolver {
	domains := make([]string, 0, len(opts.PlaceholderEmailDomains))
	for _, d := range opts.PlaceholderEmailDomains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			domains = append(domains, d)
		}
	}
	return &Resolver{lookup: lookup, placeholderDomains: domains, logger: orDiscardLogger(logger)}
}

type strategyFunc func(ctx context.Context, q resolveQuery) (*Employee, error)

type resolveQuery struct {
	firstName   string
	lastName    string
	fullNameKey string
	nickname    string
	email       string
	phone       string
}

// Resolve は既存社員を最大 1 件返します。
// 一致が無い場合は nil, nil を返し、検索自体の失敗のみをエラーとします。
func (r *Resolver) Resolve(ctx context.Context, rec IncomingRecord) (*Match, error) {
	first, last := rec.NameParts()
	if first == "" {
		return nil, nil
	}

	q := resolveQuery{
		firstName: first,
		lastName:  last,
		nickname:  name.Normalize(valueOf(rec.Nickname)),
		email:     valueOf(rec.Email),
		phone:     valueOf(rec.Phone),
	}
	switch {
	case valueOf(rec.FullName) != "":
		q.fullNameKey = name.Normalize(valueOf(rec.FullName))
	case last != "":
		q.fullNameKey = name.Normalize(first + " " + last)
	default:
		q.fullNameKey = name.Normalize(first)
	}

	log := r.logger.WithFields(logrus.Fields{"first_name": first, "last_name": last, "source": rec.Source})

	strategies := []struct {
		strategy Strategy
		fn       strategyFunc
	}{
		{StrategyExactName, r.byExactName},
		{StrategyNickname, r.byNickname},
		{StrategyEmail, r.byEmail},
		{StrategyFuzzyName, r.byFuzzyName},
		{StrategySingleName, r.bySingleName},
		{StrategyPhone, r.byPhone},
	}

	for _, s := range strategies {
		found, err := s.fn(ctx, q)
		if err != nil {
			return nil, err
		}
		if found != nil {
			log.WithFields(logrus.Fields{"strategy": s.strategy, "employee_id": found.ID}).Debug("employee resolved")
			return &Match{Employee: found, Strategy: s.strategy}, nil
		}
	}

	log.Debug("no matching employee")
	return nil, nil
}

func (r *Resolver) byExactName(ctx context.Context, q resolveQuery) (*Employee, error) {
	if q.lastName == "" {
		return nil, nil
	}
	return found(r.lookup.FindByExactName(ctx, q.firstName, q.lastName))
}

func (r *Resolver) byNickname(ctx context.Context, q resolveQuery) (*Employee, error) {
	keys := make([]string, 0, 2)
	if q.nickname != "" {
		keys = append(keys, q.nickname)
	}
	if q.fullNameKey != "" && q.fullNameKey != q.nickname {
		keys = append(keys, q.fullNameKey)
	}

	for _, key := range keys {
		emp, err := found(r.lookup.FindByNickname(ctx, key))
		if err != nil || emp != nil {
			return emp, err
		}
	}
	return nil, nil
}

func (r *Resolver) byEmail(ctx context.Context, q resolveQuery) (*Employee, error) {
	if q.email == "" || r.isPlaceholderEmail(q.email) {
		return nil, nil
	}
	return found(r.lookup.FindByEmail(ctx, q.email))
}

func (r *Resolver) byFuzzyName(ctx context.Context, q resolveQuery) (*Employee, error) {
	if q.lastName == "" {
		return nil, nil
	}

	candidates, err := r.lookup.ListByLastName(ctx, q.lastName)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return nil, nil
		}
		return nil, err
	}

	incoming := q.firstName + " " + q.lastName
	for _, candidate := range candidates {
		if candidate == nil || candidate.IsRetired() {
			continue
		}
		if name.NamesSimilar(incoming, candidate.FullName()) {
			return candidate, nil
		}
	}
	return nil, nil
}

func (r *Resolver) bySingleName(ctx context.Context, q resolveQuery) (*Employee, error) {
	if q.lastName != "" {
		return nil, nil
	}
	return found(r.lookup.FindByFullName(ctx, q.firstName))
}

func (r *Resolver) byPhone(ctx context.Context, q resolveQuery) (*Employee, error) {
	digits := DigitsOnly(q.phone)
	if len(digits) < minPhoneDigits {
		return nil, nil
	}
	return found(r.lookup.FindByPhoneDigits(ctx, digits))
}

func (r *Resolver) isPlaceholderEmail(email string) bool {
	lower := strings.ToLower(email)
	for _, domain := range r.placeholderDomains {
		if strings.HasSuffix(lower, "@"+domain) {
			return true
		}
	}
	return false
}

// found は検索結果を照合用に変換します。未検出と退職済みは nil として扱います。
func found(emp *Employee, err error) (*Employee, error) {
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if emp == nil || emp.IsRetired() {
		return nil, nil
	}
	return emp, nil
}

// DigitsOnly は数字以外を取り除きます。
func DigitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
