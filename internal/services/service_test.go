package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hearthplan/homeplan-backend/internal/logger"
	"github.com/hearthplan/homeplan-backend/internal/repos"
	"github.com/hearthplan/homeplan-backend/internal/types"
)

// testEnv wires the full service stack against an in-memory sqlite database.
type testEnv struct {
	db        *gorm.DB
	log       *logger.Logger
	childRepo repos.ChildRepo
	topicRepo repos.TopicRepo
	sessRepo  repos.StudySessionRepo
	blockRepo repos.TimeBlockRepo
	eventRepo repos.ImportedEventRepo
	entryRepo repos.CatchUpEntryRepo

	index     CommitmentIndex
	conflicts ConflictDetector
	capacity  CapacityService
	sessions  SessionService
	planner   CatchUpPlanner
	advisor   AdvisorService
	calendar  CalendarService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.Child{},
		&types.Topic{},
		&types.StudySession{},
		&types.TimeBlock{},
		&types.ImportedEvent{},
		&types.CatchUpEntry{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	env := &testEnv{db: db, log: log}
	env.childRepo = repos.NewChildRepo(db, log)
	env.topicRepo = repos.NewTopicRepo(db, log)
	env.sessRepo = repos.NewStudySessionRepo(db, log)
	env.blockRepo = repos.NewTimeBlockRepo(db, log)
	env.eventRepo = repos.NewImportedEventRepo(db, log)
	env.entryRepo = repos.NewCatchUpEntryRepo(db, log)

	env.index = NewCommitmentIndex(db, log, env.blockRepo, env.eventRepo, nil, 0)
	env.conflicts = NewConflictDetector(log, env.index, env.sessRepo)
	env.capacity = NewCapacityService(log, env.index, env.sessRepo)
	notifier := NewLogCompletionNotifier(log)
	env.sessions = NewSessionService(db, log, env.childRepo, env.topicRepo, env.sessRepo, env.entryRepo, env.conflicts, env.capacity, notifier)
	env.planner = NewCatchUpPlanner(db, log, CatchUpConfig{}, env.childRepo, env.sessRepo, env.entryRepo, env.index, env.capacity, env.sessions)
	env.advisor = NewAdvisorService(log, AdvisorConfig{}, env.childRepo, env.topicRepo, env.sessRepo, env.capacity)
	env.calendar = NewCalendarService(log, env.childRepo, env.blockRepo, env.eventRepo, env.index, 0)
	return env
}

func (e *testEnv) mustChild(t *testing.T, weeklyBudget int) *types.Child {
	t.Helper()
	child, err := e.childRepo.Create(context.Background(), nil, &types.Child{
		Name:                "Ada",
		WeeklyBudgetMinutes: weeklyBudget,
		Timezone:            "UTC",
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return child
}

func (e *testEnv) mustTopic(t *testing.T, name, subject string, minutes int) *types.Topic {
	t.Helper()
	topic, err := e.topicRepo.Create(context.Background(), nil, &types.Topic{
		Name:             name,
		Subject:          subject,
		EstimatedMinutes: minutes,
	})
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	return topic
}

func (e *testEnv) mustBlock(t *testing.T, child *types.Child, day, start, end int, label string) *types.TimeBlock {
	t.Helper()
	block, err := e.calendar.CreateTimeBlock(context.Background(), child.ID, TimeBlockInput{
		DayOfWeek:   day,
		StartMinute: start,
		EndMinute:   end,
		Label:       label,
	})
	if err != nil {
		t.Fatalf("create block: %v", err)
	}
	return block
}

func (e *testEnv) mustSession(t *testing.T, child *types.Child, topic *types.Topic) *types.StudySession {
	t.Helper()
	sess, err := e.sessions.CreateFromTopic(context.Background(), child.ID, topic.ID, nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

func (e *testEnv) mustScheduled(t *testing.T, child *types.Child, topic *types.Topic, day, start, end int) *types.StudySession {
	t.Helper()
	sess := e.mustSession(t, child, topic)
	if _, err := e.sessions.Plan(context.Background(), sess.ID); err != nil {
		t.Fatalf("plan: %v", err)
	}
	sess, err := e.sessions.Schedule(context.Background(), sess.ID, ScheduleSlot{
		DayOfWeek:      day,
		StartMinute:    start,
		EndMinute:      end,
		CommitmentType: types.CommitmentFlexible,
	}, ScheduleOptions{})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	return sess
}

// nextWeekday returns the first date on or after `from` falling on the ISO
// weekday. Keeps test dates deterministic without hard-coding a calendar.
func nextWeekday(from time.Time, dayOfWeek int) time.Time {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for isoWeekday(from) != dayOfWeek {
		from = from.AddDate(0, 0, 1)
	}
	return from
}
