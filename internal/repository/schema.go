package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema mirrors the hosted backend's tables. Deleting a property cascades
// to its images and leads.
const schema = `
CREATE TABLE IF NOT EXISTS properties (
	id                UUID PRIMARY KEY,
	title             TEXT          NOT NULL,
	address           TEXT          NOT NULL,
	price             NUMERIC(12,2) NOT NULL CHECK (price >= 0),
	description       TEXT,
	sqft              INTEGER,
	bedrooms          INTEGER,
	bathrooms         INTEGER,
	status            TEXT          NOT NULL DEFAULT 'Active' CHECK (status IN ('Active', 'Pending', 'Sold')),
	is_pocket_listing BOOLEAN       NOT NULL DEFAULT FALSE,
	created_at        TIMESTAMPTZ   NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_properties_status     ON properties(status);

CREATE TABLE IF NOT EXISTS property_images (
	id            UUID PRIMARY KEY,
	property_id   UUID        NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
	image_url     TEXT        NOT NULL,
	display_order INTEGER     NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (property_id, display_order)
);

CREATE TABLE IF NOT EXISTS leads (
	id          UUID PRIMARY KEY,
	name        VARCHAR(100) NOT NULL,
	email       VARCHAR(255) NOT NULL,
	phone       TEXT,
	message     TEXT,
	property_id UUID REFERENCES properties(id) ON DELETE CASCADE,
	created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_leads_created_at  ON leads(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_leads_property_id ON leads(property_id);

CREATE TABLE IF NOT EXISTS users (
	id              UUID PRIMARY KEY,
	email           TEXT        NOT NULL,
	password_hash   TEXT,
	role            TEXT        NOT NULL DEFAULT 'customer' CHECK (role IN ('admin', 'customer')),
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_sign_in_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(lower(email));

CREATE TABLE IF NOT EXISTS auth_sessions (
	id         UUID PRIMARY KEY,
	user_id    UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at TIMESTAMPTZ NOT NULL,
	revoked_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS auth_otps (
	email      TEXT PRIMARY KEY,
	code_hash  TEXT        NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
`

// Migrate applies the schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("repository.Migrate: %w", err)
	}
	return nil
}
