package repository

import (
	"context"
	"fmt"
)

// schema is applied on startup; every statement is idempotent
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID        PRIMARY KEY,
    email         TEXT        NOT NULL UNIQUE,
    password_hash TEXT        NOT NULL,
    display_name  TEXT        NOT NULL,
    bio           TEXT        NOT NULL DEFAULT '',
    birthdate     DATE        NOT NULL,
    gender        TEXT        NOT NULL DEFAULT '',
    city          TEXT        NOT NULL DEFAULT '',
    code          CHAR(6)     NOT NULL UNIQUE,
    role          TEXT        NOT NULL DEFAULT 'user',
    status        TEXT        NOT NULL DEFAULT 'active',
    verified      BOOLEAN     NOT NULL DEFAULT FALSE,
    push_token    TEXT,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS photos (
    id               UUID        PRIMARY KEY,
    user_id          UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    kind             TEXT        NOT NULL,
    object_key       TEXT        NOT NULL UNIQUE,
    content_type     TEXT        NOT NULL,
    status           TEXT        NOT NULL,
    rejection_reason TEXT,
    moderated_by     UUID,
    moderated_at     TIMESTAMPTZ,
    created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_photos_user_id ON photos (user_id);
CREATE INDEX IF NOT EXISTS idx_photos_status ON photos (status, created_at);

CREATE TABLE IF NOT EXISTS rooms (
    id          UUID        PRIMARY KEY,
    code        CHAR(6)     NOT NULL UNIQUE,
    host_id     UUID        NOT NULL REFERENCES users(id),
    game        TEXT        NOT NULL,
    max_players INT         NOT NULL,
    status      TEXT        NOT NULL,
    round       INT         NOT NULL DEFAULT 0,
    prompt      TEXT        NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS room_members (
    room_id   UUID        NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
    user_id   UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    joined_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (room_id, user_id)
);

CREATE TABLE IF NOT EXISTS teams (
    id          UUID        PRIMARY KEY,
    name        TEXT        NOT NULL,
    owner_id    UUID        NOT NULL REFERENCES users(id),
    join_code   CHAR(6)     NOT NULL UNIQUE,
    locked      BOOLEAN     NOT NULL DEFAULT FALSE,
    max_members INT         NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS team_members (
    team_id   UUID        NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
    user_id   UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role      TEXT        NOT NULL,
    joined_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (team_id, user_id)
);

CREATE TABLE IF NOT EXISTS contacts (
    id                   UUID        PRIMARY KEY,
    requester_id         UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    addressee_id         UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    status               TEXT        NOT NULL,
    blocked_by_requester BOOLEAN     NOT NULL DEFAULT FALSE,
    blocked_by_addressee BOOLEAN     NOT NULL DEFAULT FALSE,
    created_at           TIMESTAMPTZ NOT NULL,
    updated_at           TIMESTAMPTZ NOT NULL,
    CHECK (requester_id <> addressee_id)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_pair
    ON contacts (LEAST(requester_id, addressee_id), GREATEST(requester_id, addressee_id));

CREATE TABLE IF NOT EXISTS reports (
    id          UUID        PRIMARY KEY,
    reporter_id UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    target_id   UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    reason      TEXT        NOT NULL,
    details     TEXT        NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL,
    UNIQUE (reporter_id, target_id, reason)
);
CREATE INDEX IF NOT EXISTS idx_reports_target ON reports (target_id, created_at);

CREATE TABLE IF NOT EXISTS verifications (
    id          UUID        PRIMARY KEY,
    user_id     UUID        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    photo_id    UUID        NOT NULL REFERENCES photos(id) ON DELETE CASCADE,
    status      TEXT        NOT NULL,
    reviewed_by UUID,
    reviewed_at TIMESTAMPTZ,
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_verifications_status ON verifications (status, created_at);
`

// Migrate creates the schema if it does not exist yet
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
