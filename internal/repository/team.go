package repository

import (
	"context"
	"fmt"
	"time"

	"pulse-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const teamColumns = `id, name, owner_id, join_code, locked, max_members, created_at`

// TeamRepository handles database operations for teams
type TeamRepository struct {
	db DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var team models.Team
	err := row.Scan(
		&team.ID, &team.Name, &team.OwnerID, &team.JoinCode,
		&team.Locked, &team.MaxMembers, &team.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func loadTeamMembers(ctx context.Context, q querier, team *models.Team) error {
	query := `
		SELECT m.user_id, u.display_name, m.role, m.joined_at
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.joined_at ASC
	`
	rows, err := q.Query(ctx, query, team.ID)
	if err != nil {
		return fmt.Errorf("failed to get team members: %w", err)
	}
	defer rows.Close()

	team.Members = team.Members[:0]
	for rows.Next() {
		var m models.TeamMembership
		if err := rows.Scan(&m.UserID, &m.DisplayName, &m.Role, &m.JoinedAt); err != nil {
			return fmt.Errorf("failed to scan team member: %w", err)
		}
		team.Members = append(team.Members, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating team members: %w", err)
	}
	return nil
}

func lockTeam(ctx context.Context, tx pgx.Tx, teamID string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1 FOR UPDATE`
	team, err := scanTeam(tx.QueryRow(ctx, query, teamID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock team: %w", translate(err))
	}
	if err := loadTeamMembers(ctx, tx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// Create creates a team with its owner as the first member
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO teams (` + teamColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.Exec(ctx, query,
			team.ID, team.Name, team.OwnerID, team.JoinCode,
			team.Locked, team.MaxMembers, team.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create team: %w", translate(err))
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO team_members (team_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)`,
			team.ID, team.OwnerID, models.TeamOwner, team.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to add team owner: %w", err)
		}
		return loadTeamMembers(ctx, tx, team)
	})
}

// GetByID retrieves a team with its members
func (r *TeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	team, err := scanTeam(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", translate(err))
	}
	if err := loadTeamMembers(ctx, r.db, team); err != nil {
		return nil, err
	}
	return team, nil
}

// GetIDByJoinCode resolves a join code to a team id
func (r *TeamRepository) GetIDByJoinCode(ctx context.Context, code string) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, `SELECT id FROM teams WHERE join_code = $1`, code).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to get team by join code: %w", translate(err))
	}
	return id, nil
}

// CodeExists checks if a join code is taken
func (r *TeamRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM teams WHERE join_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check join code: %w", err)
	}
	return exists, nil
}

// ListByMember returns the teams a user belongs to
func (r *TeamRepository) ListByMember(ctx context.Context, userID string) ([]*models.Team, error) {
	query := `
		SELECT t.id, t.name, t.owner_id, t.join_code, t.locked, t.max_members, t.created_at
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY m.joined_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}
	return teams, nil
}

// AddMember adds a user after check accepts the locked team state
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID string, check func(*models.Team) error) (*models.Team, error) {
	var team *models.Team
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		team, err = lockTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		if err := check(team); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO team_members (team_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)`,
			teamID, userID, models.TeamMember, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to join team: %w", translate(err))
		}
		return loadTeamMembers(ctx, tx, team)
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// RemoveMember removes a user from a team after check, when given, accepts
// the locked team state. Ownership passes to the earliest-joined remaining
// member; a team left empty is deleted and returned as nil.
func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID string, check func(*models.Team) error) (*models.Team, error) {
	var team *models.Team
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		team, err = lockTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(team); err != nil {
				return err
			}
		}
		if !team.IsMember(userID) {
			return fmt.Errorf("user is not in team: %w", ErrNotFound)
		}
		_, err = tx.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
		if err != nil {
			return fmt.Errorf("failed to leave team: %w", err)
		}

		remaining := team.Members[:0]
		for _, m := range team.Members {
			if m.UserID != userID {
				remaining = append(remaining, m)
			}
		}
		team.Members = remaining

		if len(remaining) == 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID); err != nil {
				return fmt.Errorf("failed to delete empty team: %w", err)
			}
			team = nil
			return nil
		}

		if team.OwnerID == userID {
			next := remaining[0].UserID
			if _, err := tx.Exec(ctx, `UPDATE teams SET owner_id = $1 WHERE id = $2`, next, teamID); err != nil {
				return fmt.Errorf("failed to transfer ownership: %w", err)
			}
			_, err := tx.Exec(ctx,
				`UPDATE team_members SET role = $1 WHERE team_id = $2 AND user_id = $3`,
				models.TeamOwner, teamID, next,
			)
			if err != nil {
				return fmt.Errorf("failed to promote new owner: %w", err)
			}
			team.OwnerID = next
			team.Members[0].Role = models.TeamOwner
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// SetLocked opens or closes a team for new members
func (r *TeamRepository) SetLocked(ctx context.Context, teamID string, locked bool) error {
	result, err := r.db.Exec(ctx, `UPDATE teams SET locked = $1 WHERE id = $2`, locked, teamID)
	if err != nil {
		return fmt.Errorf("failed to update team lock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to update team lock: %w", ErrNotFound)
	}
	return nil
}
