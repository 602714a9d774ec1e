package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/ogurasousui/hrcore-identity/internal/core/employee"
	"github.com/ogurasousui/hrcore-identity/internal/core/payperiod"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFiles は起動時に読み込む .env ファイルです。存在しないファイルは無視されます。
var DefaultEnvFiles = []string{".env", ".env.local"}

// DefaultPlaceholderEmailDomains は本人を識別しない既定のメールドメインです。
var DefaultPlaceholderEmailDomains = []string{"letsgetmovinggroup.com", "imported.local"}

// DefaultCollaboratorTables は社員 ID を参照する既定のテーブルです。
var DefaultCollaboratorTables = []CollaboratorTableConfig{
	{Table: "time_entries"},
	{Table: "timecard_entries"},
	{Table: "timecards"},
	{Table: "timecard_uploads"},
	{Table: "documents"},
	{Table: "training_records"},
	{Table: "performance_reviews"},
	{Table: "leave_requests"},
}

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Database DatabaseConfig `yaml:"database" envPrefix:"HRCORE_DB_"`
	Log      LogConfig      `yaml:"log" envPrefix:"HRCORE_LOG_"`
	Identity IdentityConfig `yaml:"identity"`
	Merge    MergeConfig    `yaml:"merge"`
	Payroll  PayrollConfig  `yaml:"payroll"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
// LockTimeout は読み書きトランザクション内で行ロックを待つ上限で、0 なら無制限です。
type DatabaseConfig struct {
	Host               string        `yaml:"host" env:"HOST"`
	Port               int           `yaml:"port" env:"PORT"`
	User               string        `yaml:"user" env:"USER"`
	Password           string        `yaml:"password" env:"PASSWORD"`
	Name               string        `yaml:"name" env:"NAME"`
	SSLMode            string        `yaml:"ssl_mode" env:"SSL_MODE"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
	LockTimeout        time.Duration `yaml:"-"`
	LockTimeoutRaw     string        `yaml:"lock_timeout" env:"LOCK_TIMEOUT"`
}

// LogConfig はログ出力の設定です。
type LogConfig struct {
	Level  string       `yaml:"level" env:"LEVEL"`
	Format string       `yaml:"format" env:"FORMAT"`
	Lvl    logrus.Level `yaml:"-"`
}

// IdentityConfig は社員照合の設定です。
type IdentityConfig struct {
	PlaceholderEmailDomains []string `yaml:"placeholder_email_domains"`
}

// CollaboratorTableConfig は社員 ID を外部キーに持つテーブルの設定です。
type CollaboratorTableConfig struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column"`
}

// MergeConfig は重複統合の設定です。
type MergeConfig struct {
	CollaboratorTables []CollaboratorTableConfig    `yaml:"collaborator_tables"`
	Tables             []employee.CollaboratorTable `yaml:"-"`
}

// PayrollConfig は給与期間とバックフィルの設定です。
type PayrollConfig struct {
	ReferencePaydayRaw string             `yaml:"reference_payday"`
	LedgerTables       []string           `yaml:"ledger_tables"`
	PaydayScheduleRaw  map[string]string  `yaml:"payday_schedule"`
	ReferencePayday    time.Time          `yaml:"-"`
	PaydaySchedule     payperiod.Schedule `yaml:"-"`
}

// LoadEnvFiles は存在する .env ファイルのみを読み込み、読み込んだ数を返します。
// 既に設定済みの環境変数は上書きされません。
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("config: load env files: %w", err)
	}
	return len(existing), nil
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Log.validateAndNormalize(); err != nil {
		return err
	}
	c.Identity.normalize()
	if err := c.Merge.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Payroll.validateAndNormalize(); err != nil {
		return err
	}
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	lockTimeout, err := parseDurationAllowEmpty(d.LockTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: database.lock_timeout: %w", err)
	}
	d.LockTimeout = lockTimeout

	return nil
}

func (l *LogConfig) validateAndNormalize() error {
	if l.Level == "" {
		l.Level = "info"
	}
	lvl, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	l.Lvl = lvl

	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	switch l.Format {
	case "":
		l.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", l.Format)
	}
	return nil
}

func (i *IdentityConfig) normalize() {
	if i.PlaceholderEmailDomains == nil {
		i.PlaceholderEmailDomains = append([]string(nil), DefaultPlaceholderEmailDomains...)
		return
	}
	domains := make([]string, 0, len(i.PlaceholderEmailDomains))
	for _, d := range i.PlaceholderEmailDomains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			domains = append(domains, d)
		}
	}
	i.PlaceholderEmailDomains = domains
}

func (m *MergeConfig) validateAndNormalize() error {
	if len(m.CollaboratorTables) == 0 {
		m.CollaboratorTables = append([]CollaboratorTableConfig(nil), DefaultCollaboratorTables...)
	}

	raw := make([]employee.CollaboratorTable, 0, len(m.CollaboratorTables))
	for _, t := range m.CollaboratorTables {
		raw = append(raw, employee.CollaboratorTable{Name: t.Table, Column: t.Column})
	}
	tables, err := employee.NormalizeCollaboratorTables(raw)
	if err != nil {
		return fmt.Errorf("config: merge.collaborator_tables: %w", err)
	}
	m.Tables = tables
	return nil
}

func (p *PayrollConfig) validateAndNormalize() error {
	if p.ReferencePaydayRaw == "" {
		p.ReferencePayday = payperiod.DefaultReferencePayday
	} else {
		ref, err := payperiod.ParseDate(strings.TrimSpace(p.ReferencePaydayRaw))
		if err != nil {
			return fmt.Errorf("config: payroll.reference_payday: %w", err)
		}
		if err := payperiod.ValidatePayday(ref); err != nil {
			return fmt.Errorf("config: payroll.reference_payday: %w", err)
		}
		p.ReferencePayday = ref
	}

	tables, err := payperiod.NormalizeLedgerTables(p.LedgerTables)
	if err != nil {
		return fmt.Errorf("config: payroll.ledger_tables: %w", err)
	}
	p.LedgerTables = tables

	schedule, err := payperiod.NewSchedule(p.PaydayScheduleRaw)
	if err != nil {
		return fmt.Errorf("config: payroll.payday_schedule: %w", err)
	}
	p.PaydaySchedule = schedule
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
