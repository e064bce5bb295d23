package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/holiman/uint256"

	"crowdsale/pkg/domain"
	pstrings "crowdsale/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	LogLevel      string
	LogFormat     string
	JWTSigningKey string
	JWTIssuer     string
	AdminToken    string
	DatabaseURL   string
	AuditBuffer   int
	RateLimit     RateLimitConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Sale          SaleConfig
	Token         TokenConfig
}

// RedisConfig configures the optional Redis whitelist backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RateLimitConfig throttles authenticated writes per caller address.
type RateLimitConfig struct {
	Disabled bool
	Writes   int
	Window   time.Duration
}

// KafkaConfig configures the optional audit topic sink.
type KafkaConfig struct {
	Brokers    []string
	ClientID   string
	AuditTopic string
}

// SaleConfig holds the immutable sale parameters. Amounts are in wei.
type SaleConfig struct {
	// Address is the sale engine's own account; it owns the token after hand-off.
	Address             domain.Address
	Controller          domain.Address
	Wallet              domain.Address
	Rate                *uint256.Int
	HardCap             *uint256.Int
	SoftGoal            *uint256.Int
	MinimumContribution *uint256.Int
	OpeningTime         time.Time
	ClosingTime         time.Time
}

// TokenConfig holds asset parameters. Amounts are in token base units.
type TokenConfig struct {
	Decimals    int32
	MaxSupply   *uint256.Int
	Allocations []Allocation
}

// Allocation is an ecosystem pre-allocation minted at token construction.
type Allocation struct {
	To     domain.Address
	Amount *uint256.Int
}

// Development defaults.
const (
	defaultAddr        = ":8080"
	defaultController  = "0x1000000000000000000000000000000000000001"
	defaultWallet      = "0x2000000000000000000000000000000000000002"
	defaultSaleAddress = "0x3000000000000000000000000000000000000003"
	defaultAdvisors    = "0x4000000000000000000000000000000000000004"
	defaultCompany     = "0x5000000000000000000000000000000000000005"
	defaultTeam        = "0x6000000000000000000000000000000000000006"

	defaultRate            = "1000"
	defaultHardCapEther    = "100"
	defaultSoftGoalEther   = "25"
	defaultMinimumEther    = "1"
	defaultMaxSupplyTokens = "100000000"
	defaultOpeningDelay    = 2 * time.Minute
	defaultSaleDuration    = 3 * time.Minute
)

var defaultAllocations = fmt.Sprintf("%s:7000000,%s:19000000,%s:24000000", defaultAdvisors, defaultCompany, defaultTeam)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	return Load(os.Getenv, time.Now())
}

// Load builds a Server config from getenv. start anchors the default sale window.
// Every malformed setting is reported, not just the first.
func Load(getenv func(string) string, start time.Time) (Server, error) {
	p := &parser{getenv: getenv}

	jwtSigningKey := getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	cfg := Server{
		Addr:          p.str("CROWDSALE_ADDR", defaultAddr),
		LogLevel:      p.str("LOG_LEVEL", "info"),
		LogFormat:     p.str("LOG_FORMAT", "json"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     p.str("JWT_ISSUER", "crowdsale"),
		AdminToken:    getenv("ADMIN_TOKEN"),
		DatabaseURL:   getenv("DATABASE_URL"),
		AuditBuffer:   p.integer("AUDIT_BUFFER", 1024),
		RateLimit: RateLimitConfig{
			Disabled: p.boolean("RATE_LIMIT_DISABLED", false),
			Writes:   p.integer("RATE_LIMIT_WRITES", 30),
			Window:   p.duration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Redis: RedisConfig{
			URL:          getenv("REDIS_URL"),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    pstrings.SplitList(getenv("KAFKA_BROKERS")),
			ClientID:   p.str("KAFKA_CLIENT_ID", "crowdsale"),
			AuditTopic: p.str("KAFKA_AUDIT_TOPIC", "crowdsale.audit"),
		},
	}

	decimals := p.integer("TOKEN_DECIMALS", int(domain.TokenDecimals))
	opening := p.time("SALE_OPENING_TIME", start.Add(defaultOpeningDelay))
	cfg.Token = TokenConfig{
		Decimals:    int32(decimals),
		MaxSupply:   p.units("TOKEN_MAX_SUPPLY", defaultMaxSupplyTokens, int32(decimals)),
		Allocations: p.allocations("TOKEN_ALLOCATIONS", defaultAllocations, int32(decimals)),
	}
	cfg.Sale = SaleConfig{
		Address:             p.address("SALE_ADDRESS", defaultSaleAddress),
		Controller:          p.address("SALE_CONTROLLER", defaultController),
		Wallet:              p.address("SALE_WALLET", defaultWallet),
		Rate:                p.units("SALE_RATE", defaultRate, 0),
		HardCap:             p.units("SALE_HARD_CAP", defaultHardCapEther, domain.EtherDecimals),
		SoftGoal:            p.units("SALE_SOFT_GOAL", defaultSoftGoalEther, domain.EtherDecimals),
		MinimumContribution: p.units("SALE_MIN_CONTRIBUTION", defaultMinimumEther, domain.EtherDecimals),
		OpeningTime:         opening,
		ClosingTime:         p.time("SALE_CLOSING_TIME", opening.Add(defaultSaleDuration)),
	}

	if err := errors.Join(p.errs...); err != nil {
		return Server{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v := p.getenv(key); v != "" {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) boolean(key string, def bool) bool {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (p *parser) time(key string, def time.Time) time.Time {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return t
}

func (p *parser) address(key, def string) domain.Address {
	a, err := domain.ParseAddress(p.str(key, def))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
	}
	return a
}

// units parses a human decimal amount (e.g. "2.5" ether) into base units.
func (p *parser) units(key, def string, decimals int32) *uint256.Int {
	v, err := domain.ParseUnits(p.str(key, def), decimals)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return new(uint256.Int)
	}
	return v
}

// allocations parses "addr:amount,addr:amount" with amounts in whole tokens.
func (p *parser) allocations(key, def string, decimals int32) []Allocation {
	raw := p.getenv(key)
	if raw == "" {
		raw = def
	}
	if strings.TrimSpace(raw) == "none" {
		return nil
	}

	var out []Allocation
	for _, entry := range pstrings.SplitList(raw) {
		addrPart, amountPart, ok := strings.Cut(entry, ":")
		if !ok {
			p.errs = append(p.errs, fmt.Errorf("%s: entry %q is not addr:amount", key, entry))
			continue
		}
		addr, err := domain.ParseAddress(addrPart)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		amount, err := domain.ParseUnits(amountPart, decimals)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		out = append(out, Allocation{To: addr, Amount: amount})
	}
	return out
}
