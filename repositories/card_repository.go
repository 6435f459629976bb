package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/matchdayhq/league-platform/models"
)

type CardRepository interface {
	// TallyByScope aggregates card sanctions per team across the matches
	// of one (stage, group) scope. Teams without sanctions are absent from
	// the map; the standings engine treats them as zero.
	TallyByScope(ctx context.Context, stageID int, groupID *int) (map[int]models.CardTally, error)
}

type postgresCardRepository struct {
	db *sql.DB
}

func NewPostgresCardRepository(db *sql.DB) CardRepository {
	return &postgresCardRepository{db: db}
}

func (r *postgresCardRepository) TallyByScope(ctx context.Context, stageID int, groupID *int) (map[int]models.CardTally, error) {
	query := `
		SELECT c.team_id,
		       COUNT(*) FILTER (WHERE c.color = 'yellow'),
		       COUNT(*) FILTER (WHERE c.color = 'red'),
		       COUNT(*) FILTER (WHERE c.color = 'blue')
		FROM cards c
		JOIN matches m ON m.id = c.match_id
		WHERE m.stage_id = $1 AND m.group_id IS NOT DISTINCT FROM $2
		GROUP BY c.team_id`

	rows, err := r.db.QueryContext(ctx, query, stageID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally cards for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	tallies := make(map[int]models.CardTally)
	for rows.Next() {
		var t models.CardTally
		if err := rows.Scan(&t.TeamID, &t.Yellow, &t.Red, &t.Blue); err != nil {
			return nil, fmt.Errorf("failed to scan card tally row: %w", err)
		}
		tallies[t.TeamID] = t
	}
	return tallies, rows.Err()
}
