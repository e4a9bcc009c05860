package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/infra/metrics"
	"github.com/xpump/platform/internal/ledger"
	"github.com/xpump/platform/internal/repository"
	"github.com/xpump/platform/internal/scoring"
	"github.com/xpump/platform/internal/streak"
)

// ActivityRepos groups the repositories the ingestion flow writes through.
type ActivityRepos struct {
	Workouts    repository.WorkoutRepository
	Meals       repository.MealRepository
	MealConfigs repository.MealConfigRepository
	Streaks     repository.StreakRepository
	Outbox      repository.OutboxRepository
}

// ActivityService ingests workouts and meals: streak update, scoring and the
// ledger post run in that order inside one transaction.
type ActivityService struct {
	db               Database
	settings         SettingsSource
	engine           *ledger.Engine
	workoutScorer    *scoring.WorkoutScorer
	mealScorer       *scoring.MealScorer
	workoutTracker   *streak.Workout
	mealTracker      *streak.Meal
	repos            ActivityRepos
	loc              *time.Location
	defaultFrequency int
	logger           *slog.Logger
}

// NewActivityService creates an ActivityService.
func NewActivityService(
	db Database,
	settings SettingsSource,
	engine *ledger.Engine,
	workoutScorer *scoring.WorkoutScorer,
	mealScorer *scoring.MealScorer,
	repos ActivityRepos,
	loc *time.Location,
	defaultFrequency int,
	logger *slog.Logger,
) *ActivityService {
	return &ActivityService{
		db:               db,
		settings:         settings,
		engine:           engine,
		workoutScorer:    workoutScorer,
		mealScorer:       mealScorer,
		workoutTracker:   streak.NewWorkout(loc, nil),
		mealTracker:      streak.NewMeal(loc),
		repos:            repos,
		loc:              loc,
		defaultFrequency: defaultFrequency,
		logger:           logger,
	}
}

// LogWorkout records a check-in and awards its XP.
func (s *ActivityService) LogWorkout(ctx context.Context, params domain.WorkoutCheckinParams) (*domain.ActivityResult, error) {
	res, events, err := s.logWorkout(ctx, params)
	if err != nil {
		recordFailure(domain.ActivityWorkout, err)
		return nil, err
	}
	if events.streakReset {
		metrics.StreakResets.WithLabelValues(string(domain.StreakWorkout)).Inc()
	}
	if res.DailyCapped {
		metrics.DailyCapHits.Inc()
	}
	recordAward(domain.ActivityWorkout, events.xp)

	s.logger.Info("workout scored",
		"user_id", params.UserID, "workout_id", res.ActivityID,
		"awarded", res.Awarded, "level", res.Level, "streak", res.CurrentStreak)
	return res, nil
}

type flowOutcome struct {
	xp          *domain.XPChangeResult
	streakReset bool
}

func (s *ActivityService) logWorkout(ctx context.Context, params domain.WorkoutCheckinParams) (*domain.ActivityResult, flowOutcome, error) {
	var out flowOutcome
	if err := domain.ValidateWorkoutCheckin(params); err != nil {
		return nil, out, err
	}
	cfg, err := s.settings.Current()
	if err != nil {
		return nil, out, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, out, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	locked, err := s.engine.LockScore(ctx, tx, params.UserID)
	if err != nil {
		return nil, out, internalUnlessApp("lock score", err)
	}

	current, err := s.loadWorkoutStreak(ctx, tx, params.UserID)
	if err != nil {
		return nil, out, err
	}
	next, reset, err := s.advanceWorkoutStreak(ctx, tx, current, params.CheckedInAt)
	if err != nil {
		return nil, out, err
	}

	dayStart, dayEnd := streak.DayBounds(params.CheckedInAt, s.loc)
	todayTotal, err := s.repos.Workouts.SumBasePoints(ctx, tx, params.UserID, dayStart, dayEnd)
	if err != nil {
		return nil, out, internalUnlessApp("daily workout total", err)
	}

	score, err := s.workoutScorer.Calculate(ctx, tx, cfg, scoring.WorkoutInput{
		UserID:          params.UserID,
		Score:           locked.Score,
		DurationSeconds: params.DurationSeconds,
		TodayTotal:      todayTotal,
		Streak:          next.Current,
	})
	if err != nil {
		return nil, out, internalUnlessApp("score workout", err)
	}

	workout := &domain.Workout{
		ID:              uuid.New(),
		UserID:          params.UserID,
		CheckedInAt:     params.CheckedInAt,
		DurationSeconds: params.DurationSeconds,
		Comments:        params.Comments,
		BasePoints:      score.Award,
	}
	if err := s.repos.Workouts.Insert(ctx, tx, workout); err != nil {
		return nil, out, internalUnlessApp("insert workout", err)
	}

	xp, err := s.engine.Apply(ctx, tx, cfg, *locked, domain.XPChangeParams{
		UserID:     params.UserID,
		Type:       domain.XPEntryAward,
		Source:     domain.ActivityWorkout,
		ActivityID: &workout.ID,
		Amount:     score.Award,
	})
	if err != nil {
		return nil, out, internalUnlessApp("post workout xp", err)
	}

	if err := s.repos.Streaks.SaveWorkout(ctx, tx, next); err != nil {
		return nil, out, internalUnlessApp("save workout streak", err)
	}
	if reset != nil {
		if err := s.repos.Outbox.Insert(ctx, tx, *reset); err != nil {
			return nil, out, internalUnlessApp("insert streak event", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, out, domain.ErrInternal("commit tx", err)
	}

	out.xp = xp
	out.streakReset = reset != nil
	return &domain.ActivityResult{
		ActivityID:    workout.ID,
		Kind:          domain.ActivityWorkout,
		Awarded:       score.Award,
		Score:         xp.After.Score,
		Level:         xp.After.Level,
		LeveledUp:     xp.LeveledUp,
		CurrentStreak: next.Current,
		LongestStreak: next.Longest,
		DailyCapped:   score.Cap.Capped,
	}, out, nil
}

func (s *ActivityService) loadWorkoutStreak(ctx context.Context, db repository.DBTX, userID uuid.UUID) (domain.WorkoutStreak, error) {
	st, err := s.repos.Streaks.FindWorkout(ctx, db, userID)
	if err != nil {
		return domain.WorkoutStreak{}, internalUnlessApp("load workout streak", err)
	}
	if st == nil {
		st = domain.NewWorkoutStreak(userID, s.defaultFrequency)
	}
	return *st, nil
}

// advanceWorkoutStreak closes a missed cadence week before counting the new
// check-in, so ingestion stays correct when the sweep has not run yet.
func (s *ActivityService) advanceWorkoutStreak(ctx context.Context, db repository.DBTX, st domain.WorkoutStreak, at time.Time) (domain.WorkoutStreak, *domain.OutboxDraft, error) {
	previous := st.Current
	ended := false

	if start, end, ok := s.workoutTracker.TrackedWeek(st); ok && st.Current > 0 {
		count, err := s.repos.Workouts.CountBetween(ctx, db, st.UserID, start, end)
		if err != nil {
			return st, nil, internalUnlessApp("count tracked week", err)
		}
		if s.workoutTracker.Ended(st, count, at) {
			st = s.workoutTracker.Reset(st)
			ended = true
		}
	}

	next, restarted := s.workoutTracker.Update(st, at)
	if !ended && !restarted {
		return next, nil, nil
	}
	evt := domain.NewStreakResetEvent(st.UserID, domain.StreakWorkout, previous, next.Longest)
	return next, &evt, nil
}

// LogMeal records a meal in a configured slot and awards its XP.
func (s *ActivityService) LogMeal(ctx context.Context, params domain.MealLogParams) (*domain.ActivityResult, error) {
	res, events, err := s.logMeal(ctx, params)
	if err != nil {
		recordFailure(domain.ActivityMeal, err)
		return nil, err
	}
	if events.streakReset {
		metrics.StreakResets.WithLabelValues(string(domain.StreakMeal)).Inc()
	}
	recordAward(domain.ActivityMeal, events.xp)

	s.logger.Info("meal scored",
		"user_id", params.UserID, "meal_id", res.ActivityID,
		"awarded", res.Awarded, "level", res.Level, "streak", res.CurrentStreak)
	return res, nil
}

func (s *ActivityService) logMeal(ctx context.Context, params domain.MealLogParams) (*domain.ActivityResult, flowOutcome, error) {
	var out flowOutcome
	if err := domain.ValidateMealLog(params); err != nil {
		return nil, out, err
	}
	cfg, err := s.settings.Current()
	if err != nil {
		return nil, out, err
	}

	slots, err := s.repos.MealConfigs.ListSlots(ctx, s.db)
	if err != nil {
		return nil, out, domain.ErrInternal("list meal slots", err)
	}
	var slot *domain.MealSlot
	for i := range slots {
		if slots[i].ID == params.SlotID {
			slot = &slots[i]
		}
	}
	if slot == nil {
		return nil, out, domain.ErrNotFound("meal slot", params.SlotID.String())
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, out, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	locked, err := s.engine.LockScore(ctx, tx, params.UserID)
	if err != nil {
		return nil, out, internalUnlessApp("lock score", err)
	}

	dayStart, dayEnd := streak.DayBounds(params.MealTime, s.loc)
	dup, err := s.repos.Meals.ExistsForSlot(ctx, tx, params.UserID, params.SlotID, dayStart, dayEnd)
	if err != nil {
		return nil, out, internalUnlessApp("check meal slot", err)
	}
	if dup {
		return nil, out, domain.ErrConflict(fmt.Sprintf("%s already logged on %s", slot.Name, dayStart.Format(time.DateOnly)))
	}

	st, err := s.repos.Streaks.FindMeal(ctx, tx, params.UserID)
	if err != nil {
		return nil, out, internalUnlessApp("load meal streak", err)
	}
	if st == nil {
		st = domain.NewMealStreak(params.UserID)
	}
	previous := st.Current
	next, broke := s.mealTracker.Update(*st, slot.Order, params.MealTime, len(slots))

	score, err := s.mealScorer.Calculate(ctx, tx, cfg, scoring.MealInput{
		UserID: params.UserID,
		Score:  locked.Score,
		Streak: next.Current,
	})
	if err != nil {
		return nil, out, internalUnlessApp("score meal", err)
	}

	meal := &domain.Meal{
		ID:         uuid.New(),
		UserID:     params.UserID,
		SlotID:     params.SlotID,
		MealTime:   params.MealTime,
		Comments:   params.Comments,
		BasePoints: score.Award,
	}
	if err := s.repos.Meals.Insert(ctx, tx, meal); err != nil {
		return nil, out, internalUnlessApp("insert meal", err)
	}

	xp, err := s.engine.Apply(ctx, tx, cfg, *locked, domain.XPChangeParams{
		UserID:     params.UserID,
		Type:       domain.XPEntryAward,
		Source:     domain.ActivityMeal,
		ActivityID: &meal.ID,
		Amount:     score.Award,
	})
	if err != nil {
		return nil, out, internalUnlessApp("post meal xp", err)
	}

	if err := s.repos.Streaks.SaveMeal(ctx, tx, next); err != nil {
		return nil, out, internalUnlessApp("save meal streak", err)
	}
	resetEvent := broke && previous > 0
	if resetEvent {
		evt := domain.NewStreakResetEvent(params.UserID, domain.StreakMeal, previous, next.Longest)
		if err := s.repos.Outbox.Insert(ctx, tx, evt); err != nil {
			return nil, out, internalUnlessApp("insert streak event", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, out, domain.ErrInternal("commit tx", err)
	}

	out.xp = xp
	out.streakReset = resetEvent
	return &domain.ActivityResult{
		ActivityID:    meal.ID,
		Kind:          domain.ActivityMeal,
		Awarded:       score.Award,
		Score:         xp.After.Score,
		Level:         xp.After.Level,
		LeveledUp:     xp.LeveledUp,
		CurrentStreak: next.Current,
		LongestStreak: next.Longest,
	}, out, nil
}

// DeleteWorkout removes a workout and revokes the XP it awarded. Streaks are left as they are.
func (s *ActivityService) DeleteWorkout(ctx context.Context, userID, workoutID uuid.UUID) (*domain.XPChangeResult, error) {
	return s.revoke(ctx, userID, domain.ActivityWorkout, workoutID, activityStore{
		find: func(tx pgx.Tx) (*activityRecord, error) {
			w, err := s.repos.Workouts.FindByID(ctx, tx, workoutID)
			if err != nil || w == nil {
				return nil, err
			}
			return &activityRecord{owner: w.UserID, points: w.BasePoints}, nil
		},
		remove: func(tx pgx.Tx) error { return s.repos.Workouts.Delete(ctx, tx, workoutID) },
	})
}

// DeleteMeal removes a meal and revokes the XP it awarded. Streaks are left as they are.
func (s *ActivityService) DeleteMeal(ctx context.Context, userID, mealID uuid.UUID) (*domain.XPChangeResult, error) {
	return s.revoke(ctx, userID, domain.ActivityMeal, mealID, activityStore{
		find: func(tx pgx.Tx) (*activityRecord, error) {
			m, err := s.repos.Meals.FindByID(ctx, tx, mealID)
			if err != nil || m == nil {
				return nil, err
			}
			return &activityRecord{owner: m.UserID, points: m.BasePoints}, nil
		},
		remove: func(tx pgx.Tx) error { return s.repos.Meals.Delete(ctx, tx, mealID) },
	})
}

type activityRecord struct {
	owner  uuid.UUID
	points float64
}

type activityStore struct {
	find   func(tx pgx.Tx) (*activityRecord, error)
	remove func(tx pgx.Tx) error
}

func (s *ActivityService) revoke(ctx context.Context, userID uuid.UUID, kind domain.ActivityKind, activityID uuid.UUID, store activityStore) (*domain.XPChangeResult, error) {
	cfg, err := s.settings.Current()
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.engine.LockScore(ctx, tx, userID); err != nil {
		return nil, internalUnlessApp("lock score", err)
	}

	rec, err := store.find(tx)
	if err != nil {
		return nil, internalUnlessApp(fmt.Sprintf("load %s", kind), err)
	}
	if rec == nil || rec.owner != userID {
		return nil, domain.ErrNotFound(string(kind), activityID.String())
	}

	xp, err := s.engine.RemoveXP(ctx, tx, cfg, domain.XPChangeParams{
		UserID:     userID,
		Source:     kind,
		ActivityID: &activityID,
		Amount:     rec.points,
	})
	if err != nil {
		return nil, internalUnlessApp("revoke xp", err)
	}
	if err := store.remove(tx); err != nil {
		return nil, internalUnlessApp(fmt.Sprintf("delete %s", kind), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	if !xp.Idempotent {
		metrics.XPRevoked.WithLabelValues(string(kind)).Add(rec.points)
	}
	s.logger.Info("activity deleted", "user_id", userID, "kind", kind, "activity_id", activityID, "revoked", rec.points)
	return xp, nil
}
