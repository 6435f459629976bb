// Package brackets models knockout stages as a DAG keyed by match id,
// where edges are source-match links, and moves teams through it. The
// progressor performs a single-step relaxation: it only ever touches the
// immediate dependents of the just-finished match. Multi-hop progression
// happens over time, as each dependent later gets both of its inputs
// resolved and is itself played and finalized.
package brackets

import (
	"errors"
	"fmt"

	"github.com/matchdayhq/league-platform/models"
)

var (
	ErrMatchNotFinished = errors.New("brackets: match is not finished")
	// ErrWinnerRequired covers a knockout match finished level with no
	// recorded winner. Propagation is skipped until a decisive winner is
	// recorded, e.g. penalties folded into the score delta.
	ErrWinnerRequired    = errors.New("brackets: knockout match finished without a determined winner")
	ErrInvalidSourceLink = errors.New("brackets: source link must reference an earlier round of the same tournament")
)

// SlotUpdate is one safely applicable assignment. The caller persists it
// as a conditional write (only if the slot is still null).
type SlotUpdate struct {
	MatchID int             `json:"match_id"`
	Slot    models.TeamSlot `json:"slot"`
	TeamID  int             `json:"team_id"`
}

// SlotConflict reports a slot that already holds a different team than the
// one about to be written. It is surfaced, never applied: a conflict means
// either a duplicate trigger or a manual correction that should win.
type SlotConflict struct {
	MatchID   int             `json:"match_id"`
	Slot      models.TeamSlot `json:"slot"`
	Existing  int             `json:"existing"`
	Attempted int             `json:"attempted"`
}

type PropagationResult struct {
	Updates   []SlotUpdate   `json:"updates"`
	Conflicts []SlotConflict `json:"conflicts"`
}

// Propagate fills team slots of the dependent matches whose source links
// reference the just-finished match.
//
// Re-running with unchanged state is a no-op: a slot that already holds
// the value about to be written is neither an update nor a conflict. Slots
// holding a direct team id (no source link) are never touched.
func Propagate(finished models.Match, dependents []models.Match) (*PropagationResult, error) {
	if finished.Status != models.MatchStatusFinished {
		return nil, fmt.Errorf("%w: match %d has status %q", ErrMatchNotFinished, finished.ID, finished.Status)
	}
	winner, loser, err := decideOutcome(finished)
	if err != nil {
		return nil, err
	}

	result := &PropagationResult{}
	for _, dep := range dependents {
		for _, slot := range []models.TeamSlot{models.TeamSlotA, models.TeamSlotB} {
			link := dep.Source(slot)
			if link == nil || link.MatchID != finished.ID {
				continue
			}
			if dep.TournamentID != finished.TournamentID || dep.Round <= finished.Round {
				return nil, fmt.Errorf("%w: match %d (round %d) feeds match %d (round %d)",
					ErrInvalidSourceLink, finished.ID, finished.Round, dep.ID, dep.Round)
			}

			var teamID int
			switch link.Outcome {
			case models.SourceOutcomeWinner:
				teamID = winner
			case models.SourceOutcomeLoser:
				teamID = loser
			default:
				return nil, fmt.Errorf("%w: unknown outcome selector %q on match %d",
					ErrInvalidSourceLink, link.Outcome, dep.ID)
			}

			existing := dep.TeamIn(slot)
			switch {
			case existing == nil:
				result.Updates = append(result.Updates, SlotUpdate{
					MatchID: dep.ID,
					Slot:    slot,
					TeamID:  teamID,
				})
			case *existing == teamID:
				// Already applied; idempotent re-run.
			default:
				result.Conflicts = append(result.Conflicts, SlotConflict{
					MatchID:   dep.ID,
					Slot:      slot,
					Existing:  *existing,
					Attempted: teamID,
				})
			}
		}
	}
	return result, nil
}

// decideOutcome determines the winner and loser of a finished knockout
// match. An explicit winner reference takes precedence; otherwise the
// score decides. A draw yields no propagatable outcome.
func decideOutcome(m models.Match) (winner, loser int, err error) {
	if m.TeamAID == nil || m.TeamBID == nil {
		return 0, 0, fmt.Errorf("%w: match %d finished with an unresolved team slot", ErrWinnerRequired, m.ID)
	}
	a, b := *m.TeamAID, *m.TeamBID

	if m.WinnerTeamID != nil {
		switch *m.WinnerTeamID {
		case a:
			return a, b, nil
		case b:
			return b, a, nil
		default:
			return 0, 0, fmt.Errorf("%w: winner %d is not a participant of match %d",
				ErrWinnerRequired, *m.WinnerTeamID, m.ID)
		}
	}

	if m.ScoreA == nil || m.ScoreB == nil {
		return 0, 0, fmt.Errorf("%w: match %d has no scores and no winner reference", ErrWinnerRequired, m.ID)
	}
	switch {
	case *m.ScoreA > *m.ScoreB:
		return a, b, nil
	case *m.ScoreA < *m.ScoreB:
		return b, a, nil
	default:
		return 0, 0, fmt.Errorf("%w: match %d ended %d-%d", ErrWinnerRequired, m.ID, *m.ScoreA, *m.ScoreB)
	}
}
