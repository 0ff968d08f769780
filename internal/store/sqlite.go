package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/reachwell/creator-scout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Used for local and
// development runs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	d, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := d.Exec(pragma); err != nil {
			d.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: d}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS discovery_runs (
	id         TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS raw_accounts (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	discovery_run_id  TEXT NOT NULL REFERENCES discovery_runs(id),
	query             TEXT NOT NULL,
	position          INTEGER NOT NULL DEFAULT 0,
	title             TEXT NOT NULL DEFAULT '',
	snippet           TEXT NOT NULL DEFAULT '',
	source_url        TEXT NOT NULL,
	profile_url       TEXT NOT NULL DEFAULT '',
	platform          TEXT NOT NULL DEFAULT 'unknown',
	handle            TEXT NOT NULL DEFAULT '',
	stan_slug         TEXT NOT NULL DEFAULT '',
	follower_estimate INTEGER,
	provider_meta     TEXT,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (discovery_run_id, query, source_url)
);

CREATE TABLE IF NOT EXISTS creator_identities (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	canonical_stan_slug TEXT UNIQUE,
	canonical_domain    TEXT UNIQUE,
	status              TEXT NOT NULL DEFAULT 'active',
	engagement_estimate REAL,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS creator_identity_accounts (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	creator_identity_id INTEGER NOT NULL REFERENCES creator_identities(id) ON DELETE CASCADE,
	raw_account_id      INTEGER NOT NULL UNIQUE REFERENCES raw_accounts(id),
	platform            TEXT NOT NULL DEFAULT 'unknown',
	handle              TEXT NOT NULL DEFAULT '',
	profile_url         TEXT NOT NULL DEFAULT '',
	stan_slug           TEXT NOT NULL DEFAULT '',
	domain              TEXT NOT NULL DEFAULT '',
	reason              TEXT NOT NULL,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS identity_merge_candidates (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	raw_account_id        INTEGER NOT NULL UNIQUE REFERENCES raw_accounts(id),
	candidate_identity_id INTEGER REFERENCES creator_identities(id),
	reason                TEXT NOT NULL DEFAULT '',
	confidence            REAL NOT NULL DEFAULT 0,
	status                TEXT NOT NULL DEFAULT 'pending',
	created_at            DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at            DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS creator_stan_profiles (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	creator_identity_id INTEGER NOT NULL UNIQUE REFERENCES creator_identities(id) ON DELETE CASCADE,
	profile_name        TEXT NOT NULL DEFAULT '',
	handle              TEXT NOT NULL DEFAULT '',
	bio                 TEXT NOT NULL DEFAULT '',
	offers              TEXT,
	offer_cards         TEXT,
	price_points        TEXT,
	product_types       TEXT,
	outbound_socials    TEXT,
	email               TEXT NOT NULL DEFAULT '',
	cta_style           TEXT NOT NULL DEFAULT 'generic',
	header_image_url    TEXT NOT NULL DEFAULT '',
	confidence          REAL NOT NULL DEFAULT 0,
	source_text         TEXT NOT NULL DEFAULT '',
	source_length       INTEGER NOT NULL DEFAULT 0,
	fetched_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS creator_social_profiles (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	creator_identity_id INTEGER NOT NULL REFERENCES creator_identities(id) ON DELETE CASCADE,
	platform            TEXT NOT NULL,
	followers_estimate  INTEGER NOT NULL DEFAULT 0,
	avg_views_estimate  INTEGER NOT NULL DEFAULT 0,
	engagement_estimate REAL NOT NULL DEFAULT 0,
	sample_size         INTEGER NOT NULL DEFAULT 0,
	data_quality        TEXT NOT NULL DEFAULT 'sparse',
	confidence          REAL NOT NULL DEFAULT 0,
	evidence            TEXT,
	updated_at          DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (creator_identity_id, platform)
);

CREATE TABLE IF NOT EXISTS creators (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	creator_identity_id INTEGER UNIQUE REFERENCES creator_identities(id),
	name                TEXT NOT NULL DEFAULT '',
	niche               TEXT NOT NULL DEFAULT '',
	primary_platform    TEXT NOT NULL DEFAULT '',
	score               REAL,
	imported_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_raw_accounts_run ON raw_accounts(discovery_run_id);
CREATE INDEX IF NOT EXISTS idx_identity_accounts_identity ON creator_identity_accounts(creator_identity_id);
CREATE INDEX IF NOT EXISTS idx_identity_accounts_handle ON creator_identity_accounts(handle);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) EnsureDiscoveryRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO discovery_runs (id) VALUES (?) ON CONFLICT (id) DO NOTHING`,
		runID,
	)
	return eris.Wrapf(err, "sqlite: ensure discovery run %s", runID)
}

func (s *SQLiteStore) UpsertRawAccounts(ctx context.Context, accounts []model.RawAccount) (int64, error) {
	if len(accounts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback() //nolint:errcheck

	var n int64
	for _, a := range accounts {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO raw_accounts
				(discovery_run_id, query, position, title, snippet, source_url,
				 profile_url, platform, handle, stan_slug, follower_estimate, provider_meta)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (discovery_run_id, query, source_url) DO UPDATE SET
				position = excluded.position,
				title = excluded.title,
				snippet = excluded.snippet,
				profile_url = excluded.profile_url,
				platform = excluded.platform,
				handle = excluded.handle,
				stan_slug = excluded.stan_slug,
				follower_estimate = excluded.follower_estimate,
				provider_meta = excluded.provider_meta,
				updated_at = datetime('now')`,
			a.DiscoveryRunID, a.Query, a.Position, a.Title, a.Snippet, a.SourceURL,
			a.ProfileURL, string(a.Platform), a.Handle, a.StanSlug,
			a.FollowerEstimate, nullableBytes(a.ProviderMeta),
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert raw account %s", a.SourceURL)
		}
		if affected, err := res.RowsAffected(); err == nil {
			n += affected
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return n, nil
}

func (s *SQLiteStore) CoverageStats(ctx context.Context, runID string) (*CoverageStats, error) {
	stats := &CoverageStats{}

	err := s.db.QueryRowContext(ctx,
		`SELECT count(*), COALESCE(SUM(CASE WHEN stan_slug <> '' THEN 1 ELSE 0 END), 0)
		 FROM raw_accounts WHERE discovery_run_id = ?`,
		runID,
	).Scan(&stats.TotalAccounts, &stats.WithStanSlug)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: coverage totals")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT platform, count(*) FROM raw_accounts
		 WHERE discovery_run_id = ? GROUP BY platform ORDER BY count(*) DESC, platform`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: coverage by platform")
	}
	defer rows.Close()

	for rows.Next() {
		var pc PlatformCount
		if err := rows.Scan(&pc.Platform, &pc.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan platform count")
		}
		stats.ByPlatform = append(stats.ByPlatform, pc)
	}
	return stats, eris.Wrap(rows.Err(), "sqlite: coverage rows")
}

const sqliteRawAccountCols = `id, discovery_run_id, query, position, title,
	snippet, source_url, profile_url, platform, handle, stan_slug,
	follower_estimate, provider_meta, created_at, updated_at`

func scanSQLiteRawAccount(row interface{ Scan(...any) error }) (*model.RawAccount, error) {
	var (
		a    model.RawAccount
		meta sql.NullString
	)
	err := row.Scan(
		&a.ID, &a.DiscoveryRunID, &a.Query, &a.Position, &a.Title, &a.Snippet,
		&a.SourceURL, &a.ProfileURL, &a.Platform, &a.Handle, &a.StanSlug,
		&a.FollowerEstimate, &meta, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if meta.Valid {
		a.ProviderMeta = []byte(meta.String)
	}
	return &a, nil
}

func (s *SQLiteStore) ListUnlinkedRawAccounts(ctx context.Context, runID string, limit int) ([]model.RawAccount, error) {
	query := `SELECT ` + sqliteRawAccountCols + `
		FROM raw_accounts a
		WHERE NOT EXISTS (
			SELECT 1 FROM creator_identity_accounts l WHERE l.raw_account_id = a.id
		)`
	var args []any
	if runID != "" {
		query += ` AND a.discovery_run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY a.id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list unlinked raw accounts")
	}
	defer rows.Close()

	var out []model.RawAccount
	for rows.Next() {
		a, err := scanSQLiteRawAccount(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan raw account")
		}
		out = append(out, *a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: unlinked rows")
}

func (s *SQLiteStore) CountLinkedInRun(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM raw_accounts a
		 JOIN creator_identity_accounts l ON l.raw_account_id = a.id
		 WHERE a.discovery_run_id = ?`,
		runID,
	).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count linked in run")
}

const sqliteIdentityCols = `id, canonical_stan_slug, canonical_domain, status,
	engagement_estimate, created_at, updated_at`

func scanSQLiteIdentity(row interface{ Scan(...any) error }) (*model.CreatorIdentity, error) {
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

func (s *SQLiteStore) InsertIdentity(ctx context.Context, stanSlug, domain *string) (*model.CreatorIdentity, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO creator_identities (canonical_stan_slug, canonical_domain) VALUES (?, ?)`,
		stanSlug, domain,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert identity")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: identity last insert id")
	}
	return s.GetIdentity(ctx, id)
}

func (s *SQLiteStore) GetIdentity(ctx context.Context, id int64) (*model.CreatorIdentity, error) {
	ident, err := scanSQLiteIdentity(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteIdentityCols+` FROM creator_identities WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get identity %d", id)
	}
	return ident, nil
}

func (s *SQLiteStore) GetIdentityByStanSlug(ctx context.Context, slug string) (*model.CreatorIdentity, error) {
	ident, err := scanSQLiteIdentity(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteIdentityCols+` FROM creator_identities WHERE canonical_stan_slug = ?`, slug,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get identity by slug %s", slug)
	}
	return ident, nil
}

func (s *SQLiteStore) GetIdentityByDomain(ctx context.Context, domain string) (*model.CreatorIdentity, error) {
	ident, err := scanSQLiteIdentity(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteIdentityCols+` FROM creator_identities WHERE canonical_domain = ?`, domain,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get identity by domain %s", domain)
	}
	return ident, nil
}

func (s *SQLiteStore) ListIdentities(ctx context.Context, limit, offset int) ([]model.CreatorIdentity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteIdentityCols+` FROM creator_identities ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list identities")
	}
	defer rows.Close()

	var out []model.CreatorIdentity
	for rows.Next() {
		ident, err := scanSQLiteIdentity(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan identity")
		}
		out = append(out, *ident)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: identity rows")
}

func (s *SQLiteStore) SetIdentityStatus(ctx context.Context, id int64, status model.IdentityStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE creator_identities SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		string(status), id,
	)
	return eris.Wrapf(err, "sqlite: set identity %d status", id)
}

func (s *SQLiteStore) UpdateIdentityEngagement(ctx context.Context, id int64, estimate float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE creator_identities SET engagement_estimate = ?, updated_at = datetime('now') WHERE id = ?`,
		estimate, id,
	)
	return eris.Wrapf(err, "sqlite: update identity %d engagement", id)
}

func (s *SQLiteStore) LinkAccount(ctx context.Context, link model.IdentityAccountLink) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO creator_identity_accounts
			(creator_identity_id, raw_account_id, platform, handle, profile_url, stan_slug, domain, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (raw_account_id) DO NOTHING`,
		link.IdentityID, link.RawAccountID, string(link.Platform), link.Handle,
		link.ProfileURL, link.StanSlug, link.Domain, string(link.Reason),
	)
	return eris.Wrapf(err, "sqlite: link raw account %d", link.RawAccountID)
}

func (s *SQLiteStore) ListLinkedAccounts(ctx context.Context, identityID int64) ([]model.IdentityAccountLink, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, creator_identity_id, raw_account_id, platform, handle,
			profile_url, stan_slug, domain, reason, created_at
		 FROM creator_identity_accounts WHERE creator_identity_id = ? ORDER BY id`,
		identityID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list linked accounts")
	}
	defer rows.Close()

	var out []model.IdentityAccountLink
	for rows.Next() {
		var l model.IdentityAccountLink
		if err := rows.Scan(
			&l.ID, &l.IdentityID, &l.RawAccountID, &l.Platform, &l.Handle,
			&l.ProfileURL, &l.StanSlug, &l.Domain, &l.Reason, &l.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan link")
		}
		out = append(out, l)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: link rows")
}

func (s *SQLiteStore) ListLinkedRawAccounts(ctx context.Context, identityID int64) ([]model.RawAccount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.discovery_run_id, a.query, a.position, a.title, a.snippet,
			a.source_url, a.profile_url, a.platform, a.handle, a.stan_slug,
			a.follower_estimate, a.provider_meta, a.created_at, a.updated_at
		 FROM raw_accounts a
		 JOIN creator_identity_accounts l ON l.raw_account_id = a.id
		 WHERE l.creator_identity_id = ? ORDER BY a.id`,
		identityID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list linked raw accounts")
	}
	defer rows.Close()

	var out []model.RawAccount
	for rows.Next() {
		a, err := scanSQLiteRawAccount(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan linked raw account")
		}
		out = append(out, *a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: linked raw account rows")
}

func (s *SQLiteStore) FindHandleCoOccurrence(ctx context.Context, handle string, excludePlatform model.Platform) (*int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT creator_identity_id FROM creator_identity_accounts
		 WHERE lower(handle) = lower(?) AND platform <> ?
		 ORDER BY id LIMIT 1`,
		handle, string(excludePlatform),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find handle co-occurrence")
	}
	return &id, nil
}

func (s *SQLiteStore) UpsertMergeCandidate(ctx context.Context, mc model.MergeCandidate) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identity_merge_candidates
			(raw_account_id, candidate_identity_id, reason, confidence, status)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (raw_account_id) DO UPDATE SET
			candidate_identity_id = excluded.candidate_identity_id,
			reason = excluded.reason,
			confidence = excluded.confidence,
			updated_at = datetime('now')`,
		mc.RawAccountID, mc.CandidateIdentityID, mc.Reason, mc.Confidence,
		string(model.MergeCandidatePending),
	)
	return eris.Wrapf(err, "sqlite: upsert merge candidate for %d", mc.RawAccountID)
}

func (s *SQLiteStore) SelectStanEnrichmentTargets(ctx context.Context, sel StanSelector) ([]model.CreatorIdentity, error) {
	query := `SELECT i.id, i.canonical_stan_slug, i.canonical_domain, i.status,
		i.engagement_estimate, i.created_at, i.updated_at
		FROM creator_identities i
		WHERE i.canonical_stan_slug IS NOT NULL`
	var args []any

	if !sel.Force {
		query += ` AND NOT EXISTS (
			SELECT 1 FROM creator_stan_profiles p WHERE p.creator_identity_id = i.id
		)`
	}
	if sel.IdentityID > 0 {
		query += ` AND i.id = ?`
		args = append(args, sel.IdentityID)
	}
	if sel.StanSlug != "" {
		query += ` AND i.canonical_stan_slug = ?`
		args = append(args, sel.StanSlug)
	}
	if sel.DiscoveryRunID != "" {
		query += ` AND EXISTS (
			SELECT 1 FROM creator_identity_accounts l
			JOIN raw_accounts a ON a.id = l.raw_account_id
			WHERE l.creator_identity_id = i.id AND a.discovery_run_id = ?
		)`
		args = append(args, sel.DiscoveryRunID)
	}
	limit := sel.Limit
	if limit <= 0 {
		limit = 25
	}
	query += ` ORDER BY i.id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select stan targets")
	}
	defer rows.Close()

	var out []model.CreatorIdentity
	for rows.Next() {
		ident, err := scanSQLiteIdentity(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stan target")
		}
		out = append(out, *ident)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: stan target rows")
}

func (s *SQLiteStore) UpsertStanProfile(ctx context.Context, p model.StanProfile) error {
	offers, offerCards, prices, products, socials, err := marshalStanProfileJSON(p)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO creator_stan_profiles
			(creator_identity_id, profile_name, handle, bio, offers, offer_cards,
			 price_points, product_types, outbound_socials, email, cta_style,
			 header_image_url, confidence, source_text, source_length, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT (creator_identity_id) DO UPDATE SET
			profile_name = excluded.profile_name,
			handle = excluded.handle,
			bio = excluded.bio,
			offers = excluded.offers,
			offer_cards = excluded.offer_cards,
			price_points = excluded.price_points,
			product_types = excluded.product_types,
			outbound_socials = excluded.outbound_socials,
			email = excluded.email,
			cta_style = excluded.cta_style,
			header_image_url = excluded.header_image_url,
			confidence = excluded.confidence,
			source_text = excluded.source_text,
			source_length = excluded.source_length,
			fetched_at = datetime('now')`,
		p.IdentityID, p.ProfileName, p.Handle, p.Bio, string(offers), string(offerCards),
		string(prices), string(products), string(socials), p.Email, string(p.CTAStyle),
		p.HeaderImageURL, p.Confidence, p.SourceText, p.SourceLength,
	)
	return eris.Wrapf(err, "sqlite: upsert stan profile for identity %d", p.IdentityID)
}

func (s *SQLiteStore) GetStanProfile(ctx context.Context, identityID int64) (*model.StanProfile, error) {
	var (
		p                                         model.StanProfile
		offers, offerCards, prices, products, soc sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, creator_identity_id, profile_name, handle, bio, offers,
			offer_cards, price_points, product_types, outbound_socials, email,
			cta_style, header_image_url, confidence, source_text, source_length, fetched_at
		 FROM creator_stan_profiles WHERE creator_identity_id = ?`,
		identityID,
	).Scan(
		&p.ID, &p.IdentityID, &p.ProfileName, &p.Handle, &p.Bio, &offers,
		&offerCards, &prices, &products, &soc, &p.Email,
		&p.CTAStyle, &p.HeaderImageURL, &p.Confidence, &p.SourceText, &p.SourceLength, &p.FetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get stan profile for identity %d", identityID)
	}
	if err := unmarshalStanProfileJSON(&p,
		[]byte(offers.String), []byte(offerCards.String), []byte(prices.String),
		[]byte(products.String), []byte(soc.String),
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) SelectSocialEnrichmentTargets(ctx context.Context, sel SocialSelector) ([]model.CreatorIdentity, error) {
	query := `SELECT ` + sqliteIdentityCols + ` FROM creator_identities i WHERE 1=1`
	var args []any

	if !sel.Force {
		query += ` AND NOT EXISTS (
			SELECT 1 FROM creator_social_profiles sp WHERE sp.creator_identity_id = i.id
		)`
	}
	if sel.IdentityID > 0 {
		query += ` AND i.id = ?`
		args = append(args, sel.IdentityID)
	}
	limit := sel.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY i.id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: select social targets")
	}
	defer rows.Close()

	var out []model.CreatorIdentity
	for rows.Next() {
		ident, err := scanSQLiteIdentity(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan social target")
		}
		out = append(out, *ident)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: social target rows")
}

func (s *SQLiteStore) UpsertSocialSignals(ctx context.Context, signals []model.SocialSignal) error {
	for _, sig := range signals {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO creator_social_profiles
				(creator_identity_id, platform, followers_estimate, avg_views_estimate,
				 engagement_estimate, sample_size, data_quality, confidence, evidence, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
			 ON CONFLICT (creator_identity_id, platform) DO UPDATE SET
				followers_estimate = excluded.followers_estimate,
				avg_views_estimate = excluded.avg_views_estimate,
				engagement_estimate = excluded.engagement_estimate,
				sample_size = excluded.sample_size,
				data_quality = excluded.data_quality,
				confidence = excluded.confidence,
				evidence = excluded.evidence,
				updated_at = datetime('now')`,
			sig.IdentityID, string(sig.Platform), sig.FollowersEstimate,
			sig.AvgViewsEstimate, sig.EngagementEstimate, sig.SampleSize,
			string(sig.DataQuality), sig.Confidence, nullableBytes(sig.Evidence),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert social signal %d/%s", sig.IdentityID, sig.Platform)
		}
	}
	return nil
}

func (s *SQLiteStore) ListSocialSignals(ctx context.Context, identityID int64) ([]model.SocialSignal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, creator_identity_id, platform, followers_estimate,
			avg_views_estimate, engagement_estimate, sample_size, data_quality,
			confidence, evidence, updated_at
		 FROM creator_social_profiles WHERE creator_identity_id = ? ORDER BY platform`,
		identityID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list social signals")
	}
	defer rows.Close()

	var out []model.SocialSignal
	for rows.Next() {
		var (
			sig      model.SocialSignal
			evidence sql.NullString
		)
		if err := rows.Scan(
			&sig.ID, &sig.IdentityID, &sig.Platform, &sig.FollowersEstimate,
			&sig.AvgViewsEstimate, &sig.EngagementEstimate, &sig.SampleSize,
			&sig.DataQuality, &sig.Confidence, &evidence, &sig.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan social signal")
		}
		if evidence.Valid {
			sig.Evidence = []byte(evidence.String)
		}
		out = append(out, sig)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: social signal rows")
}

// nullableBytes maps empty byte slices to NULL for TEXT columns.
func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
