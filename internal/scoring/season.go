// Package scoring turns activities into XP awards. Scorers read one settings
// snapshot per call and never write; the caller posts the award to the ledger.
package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/policy"
	"github.com/xpump/platform/internal/repository"
)

// Leaderboard reports the leading score of a group.
type Leaderboard interface {
	PointsFirstPlace(ctx context.Context, db repository.DBTX, groupID uuid.UUID) (float64, error)
}

// BonusInput identifies the user being scored. Score is read under the caller's row lock.
type BonusInput struct {
	UserID uuid.UUID
	Score  float64
}

// BonusEvaluator applies the end-of-season catch-up bonus to a base XP value.
type BonusEvaluator interface {
	BaseXPWithBonus(ctx context.Context, db repository.DBTX, cfg *domain.Settings, in BonusInput, baseXP float64) (policy.SeasonBonusEvaluation, error)
}

type seasonKey struct {
	clientID uuid.UUID
	day      string
}

type cachedSeason struct {
	season   domain.Season
	loadedAt time.Time
}

// SeasonBonus resolves the user's active season and main group, then defers the
// decision to policy.EvaluateSeasonBonus. Active seasons are cached per client and
// day for at most ttl, so season edits made by a tenant admin show up within ttl.
type SeasonBonus struct {
	profiles    repository.ProfileRepository
	seasons     repository.SeasonRepository
	groups      repository.GroupRepository
	leaderboard Leaderboard
	cache       *lru.Cache
	ttl         time.Duration
	loc         *time.Location
	now         func() time.Time
	logger      *slog.Logger
}

// NewSeasonBonus creates the evaluator. cacheSize bounds the active-season cache
// and ttl bounds the age of a cached entry; ttl <= 0 disables caching.
func NewSeasonBonus(
	profiles repository.ProfileRepository,
	seasons repository.SeasonRepository,
	groups repository.GroupRepository,
	leaderboard Leaderboard,
	cacheSize int,
	ttl time.Duration,
	loc *time.Location,
	logger *slog.Logger,
) (*SeasonBonus, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("season cache: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SeasonBonus{
		profiles:    profiles,
		seasons:     seasons,
		groups:      groups,
		leaderboard: leaderboard,
		cache:       cache,
		ttl:         ttl,
		loc:         loc,
		now:         time.Now,
		logger:      logger,
	}, nil
}

// Purge drops every cached season. Registered as a settings reload hook.
func (b *SeasonBonus) Purge() {
	b.cache.Purge()
}

// Today returns the current calendar date in the configured location.
func (b *SeasonBonus) Today() time.Time {
	return domain.DateOf(b.now().In(b.loc))
}

// ActiveSeason returns the client's single season covering today.
func (b *SeasonBonus) ActiveSeason(ctx context.Context, db repository.DBTX, clientID uuid.UUID, today time.Time) (*domain.Season, error) {
	key := seasonKey{clientID: clientID, day: today.Format(time.DateOnly)}
	if v, ok := b.cache.Get(key); ok {
		entry := v.(cachedSeason)
		if b.now().Sub(entry.loadedAt) < b.ttl {
			season := entry.season
			return &season, nil
		}
		b.cache.Remove(key)
	}

	seasons, err := b.seasons.FindActiveForClient(ctx, db, clientID, today)
	if err != nil {
		return nil, fmt.Errorf("find active season: %w", err)
	}
	switch len(seasons) {
	case 0:
		return nil, domain.ErrNoActiveSeason(clientID.String())
	case 1:
		if b.ttl > 0 {
			b.cache.Add(key, cachedSeason{season: seasons[0], loadedAt: b.now()})
		}
		return &seasons[0], nil
	default:
		b.logger.Error("overlapping active seasons", "client_id", clientID, "count", len(seasons))
		return nil, domain.ErrMultipleActiveSeasons(clientID.String(), len(seasons))
	}
}

func (b *SeasonBonus) BaseXPWithBonus(ctx context.Context, db repository.DBTX, cfg *domain.Settings, in BonusInput, baseXP float64) (policy.SeasonBonusEvaluation, error) {
	profile, err := b.profiles.FindByUserID(ctx, db, in.UserID)
	if err != nil {
		return policy.SeasonBonusEvaluation{}, fmt.Errorf("find profile: %w", err)
	}
	if profile == nil {
		return policy.SeasonBonusEvaluation{}, domain.ErrNotFound("profile", in.UserID.String())
	}

	today := b.Today()
	season, err := b.ActiveSeason(ctx, db, profile.ClientID, today)
	if err != nil {
		return policy.SeasonBonusEvaluation{}, err
	}

	input := policy.SeasonBonusInput{
		MonthsRemaining:             season.MonthsRemaining(today),
		MonthsToEndSeason:           cfg.MonthsToEndSeason,
		UserScore:                   in.Score,
		PercentageFromFirstPosition: cfg.PercentageFromFirstPosition,
		SeasonBonusPercentage:       cfg.SeasonBonusPercentage,
	}
	if input.MonthsRemaining >= input.MonthsToEndSeason {
		return policy.EvaluateSeasonBonus(input, baseXP), nil
	}

	mains, err := b.groups.FindMainGroupsForUser(ctx, db, in.UserID)
	if err != nil {
		return policy.SeasonBonusEvaluation{}, fmt.Errorf("find main group: %w", err)
	}
	switch len(mains) {
	case 0:
	case 1:
		input.HasMainGroup = true
		input.LeaderScore, err = b.leaderboard.PointsFirstPlace(ctx, db, mains[0].ID)
		if err != nil {
			return policy.SeasonBonusEvaluation{}, fmt.Errorf("leader score: %w", err)
		}
	default:
		return policy.SeasonBonusEvaluation{}, domain.ErrMultipleMainGroups(in.UserID.String(), len(mains))
	}

	return policy.EvaluateSeasonBonus(input, baseXP), nil
}
