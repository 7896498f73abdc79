package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"pulse-backend/internal/models"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var teamColumnNames = []string{"id", "name", "owner_id", "join_code", "locked", "max_members", "created_at"}

func expectLockedTeam(mock pgxmock.PgxPoolIface, owner string, members ...string) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM teams WHERE id = \$1 FOR UPDATE`).
		WithArgs("t1").
		WillReturnRows(pgxmock.NewRows(teamColumnNames).AddRow(
			"t1", "Night Owls", owner, "TEAM01", false, 6, now,
		))

	rows := pgxmock.NewRows([]string{"user_id", "display_name", "role", "joined_at"})
	for i, id := range members {
		role := models.TeamMember
		if id == owner {
			role = models.TeamOwner
		}
		rows.AddRow(id, "Player "+id, role, now.Add(time.Duration(i)*time.Minute))
	}
	mock.ExpectQuery("FROM team_members").WithArgs("t1").WillReturnRows(rows)
}

func TestTeamRepository_RemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("owner leaves and earliest member is promoted", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTeamRepository(mock)

		mock.ExpectBegin()
		expectLockedTeam(mock, "owner", "owner", "u1", "u2")
		mock.ExpectExec(`DELETE FROM team_members WHERE team_id = \$1 AND user_id = \$2`).
			WithArgs("t1", "owner").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec(`UPDATE teams SET owner_id = \$1 WHERE id = \$2`).
			WithArgs("u1", "t1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(`UPDATE team_members SET role = \$1 WHERE team_id = \$2 AND user_id = \$3`).
			WithArgs(models.TeamOwner, "t1", "u1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		team, err := repo.RemoveMember(ctx, "t1", "owner", nil)
		require.NoError(t, err)
		assert.Equal(t, "u1", team.OwnerID)
		require.Len(t, team.Members, 2)
		assert.Equal(t, models.TeamOwner, team.Members[0].Role)
		assert.Equal(t, models.TeamMember, team.Members[1].Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("last member leaves and team is deleted", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTeamRepository(mock)

		mock.ExpectBegin()
		expectLockedTeam(mock, "owner", "owner")
		mock.ExpectExec(`DELETE FROM team_members`).
			WithArgs("t1", "owner").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec(`DELETE FROM teams WHERE id = \$1`).
			WithArgs("t1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		team, err := repo.RemoveMember(ctx, "t1", "owner", nil)
		require.NoError(t, err)
		assert.Nil(t, team)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("member leaves", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTeamRepository(mock)

		mock.ExpectBegin()
		expectLockedTeam(mock, "owner", "owner", "u1")
		mock.ExpectExec(`DELETE FROM team_members`).
			WithArgs("t1", "u1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		team, err := repo.RemoveMember(ctx, "t1", "u1", nil)
		require.NoError(t, err)
		assert.Equal(t, "owner", team.OwnerID)
		assert.False(t, team.IsMember("u1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("check rejects and rolls back", func(t *testing.T) {
		mock := newMock(t)
		repo := NewTeamRepository(mock)
		errNotOwner := errors.New("not owner")

		mock.ExpectBegin()
		expectLockedTeam(mock, "owner", "owner", "u1", "u2")
		mock.ExpectRollback()

		_, err := repo.RemoveMember(ctx, "t1", "u2", func(team *models.Team) error {
			if team.OwnerID != "u1" {
				return errNotOwner
			}
			return nil
		})
		assert.ErrorIs(t, err, errNotOwner)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
