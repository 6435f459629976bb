package services

import (
	"testing"

	"github.com/matchdayhq/league-platform/models"
	"github.com/matchdayhq/league-platform/standings"
	"github.com/stretchr/testify/assert"
)

func TestValidateScope(t *testing.T) {
	league := &models.Stage{Kind: models.StageKindLeague}
	groups := &models.Stage{Kind: models.StageKindGroups}
	knockout := &models.Stage{Kind: models.StageKindKnockout}

	assert.NoError(t, validateScope(league, nil))
	assert.ErrorIs(t, validateScope(league, intPtr(3)), ErrGroupStageMismatch)

	assert.NoError(t, validateScope(groups, intPtr(3)))
	assert.ErrorIs(t, validateScope(groups, nil), ErrGroupRequired)

	assert.ErrorIs(t, validateScope(knockout, nil), ErrStageKindMismatch)
	assert.ErrorIs(t, validateScope(knockout, intPtr(3)), ErrStageKindMismatch)
}

func TestScopeKeySeparatesGroups(t *testing.T) {
	assert.Equal(t, "stage:4", scopeKey(4, nil))
	assert.Equal(t, "stage:4:group:9", scopeKey(4, intPtr(9)))
	assert.NotEqual(t, scopeKey(4, intPtr(1)), scopeKey(4, intPtr(2)))
}

func TestPointsRuleAppliesOverrides(t *testing.T) {
	assert.Equal(t, standings.DefaultPointsRule, pointsRule(&models.StageConfig{}))

	cfg := &models.StageConfig{PointsWin: intPtr(2), PointsLoss: intPtr(-1)}
	rule := pointsRule(cfg)
	assert.Equal(t, 2, rule.Win)
	assert.Equal(t, standings.DefaultPointsRule.Draw, rule.Draw)
	assert.Equal(t, -1, rule.Loss)
}
