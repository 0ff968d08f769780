package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/reachwell/creator-scout/internal/db"
	"github.com/reachwell/creator-scout/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool creates a PostgresStore on an existing pool. Used by
// tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS discovery_runs (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS raw_accounts (
	id                BIGSERIAL PRIMARY KEY,
	discovery_run_id  TEXT NOT NULL REFERENCES discovery_runs(id),
	query             TEXT NOT NULL,
	position          INT NOT NULL DEFAULT 0,
	title             TEXT NOT NULL DEFAULT '',
	snippet           TEXT NOT NULL DEFAULT '',
	source_url        TEXT NOT NULL,
	profile_url       TEXT NOT NULL DEFAULT '',
	platform          TEXT NOT NULL DEFAULT 'unknown',
	handle            TEXT NOT NULL DEFAULT '',
	stan_slug         TEXT NOT NULL DEFAULT '',
	follower_estimate BIGINT,
	provider_meta     JSONB,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (discovery_run_id, query, source_url)
);

CREATE INDEX IF NOT EXISTS idx_raw_accounts_run ON raw_accounts(discovery_run_id);
CREATE INDEX IF NOT EXISTS idx_raw_accounts_stan_slug ON raw_accounts(stan_slug) WHERE stan_slug <> '';
CREATE INDEX IF NOT EXISTS idx_raw_accounts_handle ON raw_accounts(handle) WHERE handle <> '';

CREATE TABLE IF NOT EXISTS creator_identities (
	id                  BIGSERIAL PRIMARY KEY,
	canonical_stan_slug TEXT UNIQUE,
	canonical_domain    TEXT UNIQUE,
	status              TEXT NOT NULL DEFAULT 'active',
	engagement_estimate DOUBLE PRECISION,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS creator_identity_accounts (
	id                  BIGSERIAL PRIMARY KEY,
	creator_identity_id BIGINT NOT NULL REFERENCES creator_identities(id) ON DELETE CASCADE,
	raw_account_id      BIGINT NOT NULL UNIQUE REFERENCES raw_accounts(id),
	platform            TEXT NOT NULL DEFAULT 'unknown',
	handle              TEXT NOT NULL DEFAULT '',
	profile_url         TEXT NOT NULL DEFAULT '',
	stan_slug           TEXT NOT NULL DEFAULT '',
	domain              TEXT NOT NULL DEFAULT '',
	reason              TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_identity_accounts_identity ON creator_identity_accounts(creator_identity_id);
CREATE INDEX IF NOT EXISTS idx_identity_accounts_handle ON creator_identity_accounts(handle) WHERE handle <> '';

CREATE TABLE IF NOT EXISTS identity_merge_candidates (
	id                    BIGSERIAL PRIMARY KEY,
	raw_account_id        BIGINT NOT NULL UNIQUE REFERENCES raw_accounts(id),
	candidate_identity_id BIGINT REFERENCES creator_identities(id),
	reason                TEXT NOT NULL DEFAULT '',
	confidence            DOUBLE PRECISION NOT NULL DEFAULT 0,
	status                TEXT NOT NULL DEFAULT 'pending',
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS creator_stan_profiles (
	id                  BIGSERIAL PRIMARY KEY,
	creator_identity_id BIGINT NOT NULL UNIQUE REFERENCES creator_identities(id) ON DELETE CASCADE,
	profile_name        TEXT NOT NULL DEFAULT '',
	handle              TEXT NOT NULL DEFAULT '',
	bio                 TEXT NOT NULL DEFAULT '',
	offers              JSONB,
	offer_cards         JSONB,
	price_points        JSONB,
	product_types       JSONB,
	outbound_socials    JSONB,
	email               TEXT NOT NULL DEFAULT '',
	cta_style           TEXT NOT NULL DEFAULT 'generic',
	header_image_url    TEXT NOT NULL DEFAULT '',
	confidence          DOUBLE PRECISION NOT NULL DEFAULT 0,
	source_text         TEXT NOT NULL DEFAULT '',
	source_length       INT NOT NULL DEFAULT 0,
	fetched_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS creator_social_profiles (
	id                  BIGSERIAL PRIMARY KEY,
	creator_identity_id BIGINT NOT NULL REFERENCES creator_identities(id) ON DELETE CASCADE,
	platform            TEXT NOT NULL,
	followers_estimate  BIGINT NOT NULL DEFAULT 0,
	avg_views_estimate  BIGINT NOT NULL DEFAULT 0,
	engagement_estimate DOUBLE PRECISION NOT NULL DEFAULT 0,
	sample_size         INT NOT NULL DEFAULT 0,
	data_quality        TEXT NOT NULL DEFAULT 'sparse',
	confidence          DOUBLE PRECISION NOT NULL DEFAULT 0,
	evidence            JSONB,
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (creator_identity_id, platform)
);

CREATE TABLE IF NOT EXISTS creators (
	id                  BIGSERIAL PRIMARY KEY,
	creator_identity_id BIGINT UNIQUE REFERENCES creator_identities(id),
	name                TEXT NOT NULL DEFAULT '',
	niche               TEXT NOT NULL DEFAULT '',
	primary_platform    TEXT NOT NULL DEFAULT '',
	score               DOUBLE PRECISION,
	imported_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate applies the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// EnsureDiscoveryRun inserts the run row if it does not exist.
func (s *PostgresStore) EnsureDiscoveryRun(ctx context.Context, runID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO discovery_runs (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		runID,
	)
	return eris.Wrapf(err, "postgres: ensure discovery run %s", runID)
}

// UpsertRawAccounts bulk-upserts evidence rows keyed on
// (discovery_run_id, query, source_url).
func (s *PostgresStore) UpsertRawAccounts(ctx context.Context, accounts []model.RawAccount) (int64, error) {
	if len(accounts) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(accounts))
	for i, a := range accounts {
		rows[i] = []any{
			a.DiscoveryRunID, a.Query, a.Position, a.Title, a.Snippet,
			a.SourceURL, a.ProfileURL, string(a.Platform), a.Handle,
			a.StanSlug, a.FollowerEstimate, a.ProviderMeta,
		}
	}

	cfg := db.UpsertConfig{
		Table: "raw_accounts",
		Columns: []string{
			"discovery_run_id", "query", "position", "title", "snippet",
			"source_url", "profile_url", "platform", "handle",
			"stan_slug", "follower_estimate", "provider_meta",
		},
		ConflictKeys: []string{"discovery_run_id", "query", "source_url"},
		UpdateCols: []string{
			"position", "title", "snippet", "profile_url", "platform",
			"handle", "stan_slug", "follower_estimate", "provider_meta",
		},
	}

	return db.BulkUpsert(ctx, s.pool, cfg, rows)
}

// CoverageStats computes per-run ingestion coverage.
func (s *PostgresStore) CoverageStats(ctx context.Context, runID string) (*CoverageStats, error) {
	stats := &CoverageStats{}

	err := s.pool.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE stan_slug <> '')
		 FROM raw_accounts WHERE discovery_run_id = $1`,
		runID,
	).Scan(&stats.TotalAccounts, &stats.WithStanSlug)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: coverage totals")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT platform, count(*) FROM raw_accounts
		 WHERE discovery_run_id = $1 GROUP BY platform ORDER BY count(*) DESC, platform`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: coverage by platform")
	}
	defer rows.Close()

	for rows.Next() {
		var pc PlatformCount
		if err := rows.Scan(&pc.Platform, &pc.Count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan platform count")
		}
		stats.ByPlatform = append(stats.ByPlatform, pc)
	}
	return stats, eris.Wrap(rows.Err(), "postgres: coverage rows")
}

const rawAccountCols = `id, discovery_run_id, query, position, title, snippet,
	source_url, profile_url, platform, handle, stan_slug, follower_estimate,
	provider_meta, created_at, updated_at`

func scanRawAccount(row pgx.Row) (*model.RawAccount, error) {
	var a model.RawAccount
	err := row.Scan(
		&a.ID, &a.DiscoveryRunID, &a.Query, &a.Position, &a.Title, &a.Snippet,
		&a.SourceURL, &a.ProfileURL, &a.Platform, &a.Handle, &a.StanSlug,
		&a.FollowerEstimate, &a.ProviderMeta, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListUnlinkedRawAccounts returns raw accounts with no identity link yet,
// optionally scoped to one run.
func (s *PostgresStore) ListUnlinkedRawAccounts(ctx context.Context, runID string, limit int) ([]model.RawAccount, error) {
	query := `SELECT ` + rawAccountCols + `
		FROM raw_accounts a
		WHERE NOT EXISTS (
			SELECT 1 FROM creator_identity_accounts l WHERE l.raw_account_id = a.id
		)`
	args := []any{}
	if runID != "" {
		query += ` AND a.discovery_run_id = $1 ORDER BY a.id LIMIT $2`
		args = append(args, runID, limit)
	} else {
		query += ` ORDER BY a.id LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list unlinked raw accounts")
	}
	defer rows.Close()

	var out []model.RawAccount
	for rows.Next() {
		a, err := scanRawAccount(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan raw account")
		}
		out = append(out, *a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: unlinked rows")
}

// CountLinkedInRun counts raw accounts in a run that already have a link.
func (s *PostgresStore) CountLinkedInRun(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM raw_accounts a
		 JOIN creator_identity_accounts l ON l.raw_account_id = a.id
		 WHERE a.discovery_run_id = $1`,
		runID,
	).Scan(&n)
	return n, eris.Wrap(err, "postgres: count linked in run")
}

const identityCols = `id, canonical_stan_slug, canonical_domain, status,
	engagement_estimate, created_at, updated_at`

func scanIdentity(row pgx.Row) (*model.CreatorIdentity, error) {
	var ident model.CreatorIdentity
	err := row.Scan(
		&ident.ID, &ident.CanonicalStanSlug, &ident.CanonicalDomain,
		&ident.Status, &ident.EngagementEstimate, &ident.CreatedAt, &ident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ident, nil
}

// InsertIdentity creates a new identity anchored on a stan slug and/or
// domain. A unique violation is returned unwrapped in the chain so callers
// can recover via re-read.
func (s *PostgresStore) InsertIdentity(ctx context.Context, stanSlug, domain *string) (*model.CreatorIdentity, error) {
	ident, err := scanIdentity(s.pool.QueryRow(ctx,
		`INSERT INTO creator_identities (canonical_stan_slug, canonical_domain)
		 VALUES ($1, $2)
		 RETURNING `+identityCols,
		stanSlug, domain,
	))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert identity")
	}
	return ident, nil
}

// GetIdentity fetches one identity by id.
func (s *PostgresStore) GetIdentity(ctx context.Context, id int64) (*model.CreatorIdentity, error) {
	ident, err := scanIdentity(s.pool.QueryRow(ctx,
		`SELECT `+identityCols+` FROM creator_identities WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get identity %d", id)
	}
	return ident, nil
}

// GetIdentityByStanSlug fetches the identity anchored on slug, or nil.
func (s *PostgresStore) GetIdentityByStanSlug(ctx context.Context, slug string) (*model.CreatorIdentity, error) {
	ident, err := scanIdentity(s.pool.QueryRow(ctx,
		`SELECT `+identityCols+` FROM creator_identities WHERE canonical_stan_slug = $1`, slug,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get identity by slug %s", slug)
	}
	return ident, nil
}

// GetIdentityByDomain fetches the identity anchored on domain, or nil.
func (s *PostgresStore) GetIdentityByDomain(ctx context.Context, domain string) (*model.CreatorIdentity, error) {
	ident, err := scanIdentity(s.pool.QueryRow(ctx,
		`SELECT `+identityCols+` FROM creator_identities WHERE canonical_domain = $1`, domain,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get identity by domain %s", domain)
	}
	return ident, nil
}

// ListIdentities pages through identities ordered by id.
func (s *PostgresStore) ListIdentities(ctx context.Context, limit, offset int) ([]model.CreatorIdentity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+identityCols+` FROM creator_identities ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list identities")
	}
	defer rows.Close()

	var out []model.CreatorIdentity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan identity")
		}
		out = append(out, *ident)
	}
	return out, eris.Wrap(rows.Err(), "postgres: identity rows")
}

// SetIdentityStatus updates an identity's lifecycle status.
func (s *PostgresStore) SetIdentityStatus(ctx context.Context, id int64, status model.IdentityStatus) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE creator_identities SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	return eris.Wrapf(err, "postgres: set identity %d status", id)
}

// UpdateIdentityEngagement writes the blended engagement estimate back to
// the identity.
func (s *PostgresStore) UpdateIdentityEngagement(ctx context.Context, id int64, estimate float64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE creator_identities SET engagement_estimate = $2, updated_at = now() WHERE id = $1`,
		id, estimate,
	)
	return eris.Wrapf(err, "postgres: update identity %d engagement", id)
}

// LinkAccount attaches a raw account to an identity. A no-op when the raw
// account is already linked.
func (s *PostgresStore) LinkAccount(ctx context.Context, link model.IdentityAccountLink) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO creator_identity_accounts
			(creator_identity_id, raw_account_id, platform, handle, profile_url, stan_slug, domain, reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (raw_account_id) DO NOTHING`,
		link.IdentityID, link.RawAccountID, string(link.Platform), link.Handle,
		link.ProfileURL, link.StanSlug, link.Domain, string(link.Reason),
	)
	return eris.Wrapf(err, "postgres: link raw account %d", link.RawAccountID)
}

// ListLinkedAccounts returns the links for one identity.
func (s *PostgresStore) ListLinkedAccounts(ctx context.Context, identityID int64) ([]model.IdentityAccountLink, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, creator_identity_id, raw_account_id, platform, handle,
			profile_url, stan_slug, domain, reason, created_at
		 FROM creator_identity_accounts WHERE creator_identity_id = $1 ORDER BY id`,
		identityID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list linked accounts")
	}
	defer rows.Close()

	var out []model.IdentityAccountLink
	for rows.Next() {
		var l model.IdentityAccountLink
		if err := rows.Scan(
			&l.ID, &l.IdentityID, &l.RawAccountID, &l.Platform, &l.Handle,
			&l.ProfileURL, &l.StanSlug, &l.Domain, &l.Reason, &l.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan link")
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "postgres: link rows")
}

// ListLinkedRawAccounts returns the raw evidence rows linked to an identity.
func (s *PostgresStore) ListLinkedRawAccounts(ctx context.Context, identityID int64) ([]model.RawAccount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.discovery_run_id, a.query, a.position, a.title, a.snippet,
			a.source_url, a.profile_url, a.platform, a.handle, a.stan_slug,
			a.follower_estimate, a.provider_meta, a.created_at, a.updated_at
		 FROM raw_accounts a
		 JOIN creator_identity_accounts l ON l.raw_account_id = a.id
		 WHERE l.creator_identity_id = $1 ORDER BY a.id`,
		identityID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list linked raw accounts")
	}
	defer rows.Close()

	var out []model.RawAccount
	for rows.Next() {
		a, err := scanRawAccount(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan linked raw account")
		}
		out = append(out, *a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: linked raw account rows")
}

// FindHandleCoOccurrence looks for a linked account with the same handle on
// a different platform and returns its identity id, or nil.
func (s *PostgresStore) FindHandleCoOccurrence(ctx context.Context, handle string, excludePlatform model.Platform) (*int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`SELECT creator_identity_id FROM creator_identity_accounts
		 WHERE lower(handle) = lower($1) AND platform <> $2
		 ORDER BY id LIMIT 1`,
		handle, string(excludePlatform),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find handle co-occurrence")
	}
	return &id, nil
}

// UpsertMergeCandidate records an unresolved raw account, one row per
// account, refreshed as new evidence arrives.
func (s *PostgresStore) UpsertMergeCandidate(ctx context.Context, mc model.MergeCandidate) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO identity_merge_candidates
			(raw_account_id, candidate_identity_id, reason, confidence, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (raw_account_id) DO UPDATE SET
			candidate_identity_id = EXCLUDED.candidate_identity_id,
			reason = EXCLUDED.reason,
			confidence = EXCLUDED.confidence,
			updated_at = now()`,
		mc.RawAccountID, mc.CandidateIdentityID, mc.Reason, mc.Confidence,
		string(model.MergeCandidatePending),
	)
	return eris.Wrapf(err, "postgres: upsert merge candidate for %d", mc.RawAccountID)
}

// SelectStanEnrichmentTargets picks identities with a canonical stan slug,
// skipping already-enriched ones unless Force is set.
func (s *PostgresStore) SelectStanEnrichmentTargets(ctx context.Context, sel StanSelector) ([]model.CreatorIdentity, error) {
	query := `SELECT i.id, i.canonical_stan_slug, i.canonical_domain, i.status,
		i.engagement_estimate, i.created_at, i.updated_at
		FROM creator_identities i
		WHERE i.canonical_stan_slug IS NOT NULL`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if !sel.Force {
		query += ` AND NOT EXISTS (
			SELECT 1 FROM creator_stan_profiles p WHERE p.creator_identity_id = i.id
		)`
	}
	if sel.IdentityID > 0 {
		query += ` AND i.id = ` + arg(sel.IdentityID)
	}
	if sel.StanSlug != "" {
		query += ` AND i.canonical_stan_slug = ` + arg(sel.StanSlug)
	}
	if sel.DiscoveryRunID != "" {
		query += ` AND EXISTS (
			SELECT 1 FROM creator_identity_accounts l
			JOIN raw_accounts a ON a.id = l.raw_account_id
			WHERE l.creator_identity_id = i.id AND a.discovery_run_id = ` + arg(sel.DiscoveryRunID) + `
		)`
	}
	limit := sel.Limit
	if limit <= 0 {
		limit = 25
	}
	query += ` ORDER BY i.id LIMIT ` + arg(limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: select stan targets")
	}
	defer rows.Close()

	var out []model.CreatorIdentity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan stan target")
		}
		out = append(out, *ident)
	}
	return out, eris.Wrap(rows.Err(), "postgres: stan target rows")
}

// UpsertStanProfile writes the enrichment result, one row per identity.
func (s *PostgresStore) UpsertStanProfile(ctx context.Context, p model.StanProfile) error {
	offers, offerCards, prices, products, socials, err := marshalStanProfileJSON(p)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO creator_stan_profiles
			(creator_identity_id, profile_name, handle, bio, offers, offer_cards,
			 price_points, product_types, outbound_socials, email, cta_style,
			 header_image_url, confidence, source_text, source_length, fetched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
		 ON CONFLICT (creator_identity_id) DO UPDATE SET
			profile_name = EXCLUDED.profile_name,
			handle = EXCLUDED.handle,
			bio = EXCLUDED.bio,
			offers = EXCLUDED.offers,
			offer_cards = EXCLUDED.offer_cards,
			price_points = EXCLUDED.price_points,
			product_types = EXCLUDED.product_types,
			outbound_socials = EXCLUDED.outbound_socials,
			email = EXCLUDED.email,
			cta_style = EXCLUDED.cta_style,
			header_image_url = EXCLUDED.header_image_url,
			confidence = EXCLUDED.confidence,
			source_text = EXCLUDED.source_text,
			source_length = EXCLUDED.source_length,
			fetched_at = now()`,
		p.IdentityID, p.ProfileName, p.Handle, p.Bio, offers, offerCards,
		prices, products, socials, p.Email, string(p.CTAStyle),
		p.HeaderImageURL, p.Confidence, p.SourceText, p.SourceLength,
	)
	return eris.Wrapf(err, "postgres: upsert stan profile for identity %d", p.IdentityID)
}

// GetStanProfile fetches the stan profile for an identity, or nil.
func (s *PostgresStore) GetStanProfile(ctx context.Context, identityID int64) (*model.StanProfile, error) {
	var (
		p                                         model.StanProfile
		offers, offerCards, prices, products, soc []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, creator_identity_id, profile_name, handle, bio, offers,
			offer_cards, price_points, product_types, outbound_socials, email,
			cta_style, header_image_url, confidence, source_text, source_length, fetched_at
		 FROM creator_stan_profiles WHERE creator_identity_id = $1`,
		identityID,
	).Scan(
		&p.ID, &p.IdentityID, &p.ProfileName, &p.Handle, &p.Bio, &offers,
		&offerCards, &prices, &products, &soc, &p.Email,
		&p.CTAStyle, &p.HeaderImageURL, &p.Confidence, &p.SourceText, &p.SourceLength, &p.FetchedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get stan profile for identity %d", identityID)
	}
	if err := unmarshalStanProfileJSON(&p, offers, offerCards, prices, products, soc); err != nil {
		return nil, err
	}
	return &p, nil
}

// SelectSocialEnrichmentTargets picks identities for social metric
// synthesis, skipping already-covered ones unless Force is set.
func (s *PostgresStore) SelectSocialEnrichmentTargets(ctx context.Context, sel SocialSelector) ([]model.CreatorIdentity, error) {
	query := `SELECT ` + identityCols + ` FROM creator_identities i WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if !sel.Force {
		query += ` AND NOT EXISTS (
			SELECT 1 FROM creator_social_profiles sp WHERE sp.creator_identity_id = i.id
		)`
	}
	if sel.IdentityID > 0 {
		query += ` AND i.id = ` + arg(sel.IdentityID)
	}
	limit := sel.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY i.id LIMIT ` + arg(limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: select social targets")
	}
	defer rows.Close()

	var out []model.CreatorIdentity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan social target")
		}
		out = append(out, *ident)
	}
	return out, eris.Wrap(rows.Err(), "postgres: social target rows")
}

// UpsertSocialSignals writes per-platform signals; last writer wins on the
// (identity, platform) key.
func (s *PostgresStore) UpsertSocialSignals(ctx context.Context, signals []model.SocialSignal) error {
	for _, sig := range signals {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO creator_social_profiles
				(creator_identity_id, platform, followers_estimate, avg_views_estimate,
				 engagement_estimate, sample_size, data_quality, confidence, evidence, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
			 ON CONFLICT (creator_identity_id, platform) DO UPDATE SET
				followers_estimate = EXCLUDED.followers_estimate,
				avg_views_estimate = EXCLUDED.avg_views_estimate,
				engagement_estimate = EXCLUDED.engagement_estimate,
				sample_size = EXCLUDED.sample_size,
				data_quality = EXCLUDED.data_quality,
				confidence = EXCLUDED.confidence,
				evidence = EXCLUDED.evidence,
				updated_at = now()`,
			sig.IdentityID, string(sig.Platform), sig.FollowersEstimate,
			sig.AvgViewsEstimate, sig.EngagementEstimate, sig.SampleSize,
			string(sig.DataQuality), sig.Confidence, sig.Evidence,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert social signal %d/%s", sig.IdentityID, sig.Platform)
		}
	}
	return nil
}

// ListSocialSignals returns the per-platform signals for an identity.
func (s *PostgresStore) ListSocialSignals(ctx context.Context, identityID int64) ([]model.SocialSignal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, creator_identity_id, platform, followers_estimate,
			avg_views_estimate, engagement_estimate, sample_size, data_quality,
			confidence, evidence, updated_at
		 FROM creator_social_profiles WHERE creator_identity_id = $1 ORDER BY platform`,
		identityID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list social signals")
	}
	defer rows.Close()

	var out []model.SocialSignal
	for rows.Next() {
		var sig model.SocialSignal
		if err := rows.Scan(
			&sig.ID, &sig.IdentityID, &sig.Platform, &sig.FollowersEstimate,
			&sig.AvgViewsEstimate, &sig.EngagementEstimate, &sig.SampleSize,
			&sig.DataQuality, &sig.Confidence, &sig.Evidence, &sig.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan social signal")
		}
		out = append(out, sig)
	}
	return out, eris.Wrap(rows.Err(), "postgres: social signal rows")
}

func marshalStanProfileJSON(p model.StanProfile) (offers, offerCards, prices, products, socials []byte, err error) {
	if offers, err = json.Marshal(p.Offers); err != nil {
		return nil, nil, nil, nil, nil, eris.Wrap(err, "postgres: marshal offers")
	}
	if offerCards, err = json.Marshal(p.OfferCards); err != nil {
		return nil, nil, nil, nil, nil, eris.Wrap(err, "postgres: marshal offer cards")
	}
	if prices, err = json.Marshal(p.PricePoints); err != nil {
		return nil, nil, nil, nil, nil, eris.Wrap(err, "postgres: marshal price points")
	}
	if products, err = json.Marshal(p.ProductTypes); err != nil {
		return nil, nil, nil, nil, nil, eris.Wrap(err, "postgres: marshal product types")
	}
	if socials, err = json.Marshal(p.OutboundSocials); err != nil {
		return nil, nil, nil, nil, nil, eris.Wrap(err, "postgres: marshal outbound socials")
	}
	return offers, offerCards, prices, products, socials, nil
}

func unmarshalStanProfileJSON(p *model.StanProfile, offers, offerCards, prices, products, socials []byte) error {
	for _, pair := range []struct {
		data []byte
		dst  any
	}{
		{offers, &p.Offers},
		{offerCards, &p.OfferCards},
		{prices, &p.PricePoints},
		{products, &p.ProductTypes},
		{socials, &p.OutboundSocials},
	} {
		if len(pair.data) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.data, pair.dst); err != nil {
			return eris.Wrap(err, "postgres: unmarshal stan profile field")
		}
	}
	return nil
}

