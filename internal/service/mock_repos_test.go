package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/pepab0t/labs/config"
	"github.com/pepab0t/labs/internal/model"
	"github.com/pepab0t/labs/internal/repository"
	pkgerrors "github.com/pepab0t/labs/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListPending(_ context.Context, limit int) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if !u.Approved && !u.Cancelled {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock TopicRepository ──

type mockTopicRepo struct {
	topics map[string]*model.Topic
	users  *mockUserRepo
}

func newMockTopicRepo(users *mockUserRepo) *mockTopicRepo {
	return &mockTopicRepo{topics: make(map[string]*model.Topic), users: users}
}

func (m *mockTopicRepo) Create(_ context.Context, topic *model.Topic) error {
	if topic.TopicID == "" {
		topic.TopicID = fmt.Sprintf("topic-%d", len(m.topics)+1)
	}
	m.topics[topic.TopicID] = topic
	return nil
}

func (m *mockTopicRepo) GetByID(_ context.Context, id string) (*model.Topic, error) {
	t, ok := m.topics[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if t.CreatedByID != nil {
		if u, ok := m.users.users[*t.CreatedByID]; ok {
			t.CreatedBy = u
		}
	}
	return t, nil
}

func (m *mockTopicRepo) GetByTitle(_ context.Context, title string) (*model.Topic, error) {
	for _, t := range m.topics {
		if t.Title == title {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTopicRepo) List(_ context.Context) ([]model.Topic, error) {
	var result []model.Topic
	for _, t := range m.topics {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Title < result[j].Title })
	return result, nil
}

func (m *mockTopicRepo) Update(_ context.Context, topic *model.Topic) error {
	m.topics[topic.TopicID] = topic
	return nil
}

func (m *mockTopicRepo) Delete(_ context.Context, id string) error {
	delete(m.topics, id)
	return nil
}

// ── Mock EventRepository ──

type mockEventRepo struct {
	events map[string]*model.Event
	slots  *mockSlotRepo
}

func newMockEventRepo(slots *mockSlotRepo) *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*model.Event), slots: slots}
}

func (m *mockEventRepo) Create(_ context.Context, event *model.Event) error {
	if event.EventID == "" {
		event.EventID = fmt.Sprintf("event-%d", len(m.events)+1)
	}
	m.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Event, error) {
	return m.GetByID(ctx, id)
}

func (m *mockEventRepo) Update(_ context.Context, event *model.Event) error {
	m.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id string) error {
	delete(m.events, id)
	return nil
}

func (m *mockEventRepo) ListUpcomingForUser(_ context.Context, userID string, now time.Time) ([]model.Event, error) {
	var result []model.Event
	for _, s := range m.slots.all() {
		if s.ApplicantID == nil || *s.ApplicantID != userID {
			continue
		}
		if e, ok := m.events[s.EventID]; ok && !e.LabTime.Before(now) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LabTime.Before(result[j].LabTime) })
	return result, nil
}

func (m *mockEventRepo) ListClosedSince(_ context.Context, cutoff, now time.Time) ([]model.Event, error) {
	var result []model.Event
	for _, e := range m.events {
		if !e.LabTime.Before(cutoff) && !e.CloseLogout.After(now) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LabTime.Before(result[j].LabTime) })
	return result, nil
}

func (m *mockEventRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.Event, error) {
	var result []model.Event
	for _, e := range m.events {
		if !e.LabTime.Before(from) && !e.LabTime.After(to) {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LabTime.Before(result[j].LabTime) })
	return result, nil
}

// ── Mock SlotRepository ──

// mockSlotRepo keeps slots in insertion order and guards every operation with
// a mutex so concurrent Apply tests exercise the claim race for real.
type mockSlotRepo struct {
	mu     sync.Mutex
	slots  []*model.Slot
	topics *mockTopicRepo
	users  *mockUserRepo
	events *mockEventRepo
}

func newMockSlotRepo() *mockSlotRepo {
	return &mockSlotRepo{}
}

func (m *mockSlotRepo) all() []*model.Slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Slot(nil), m.slots...)
}

func (m *mockSlotRepo) decorate(s *model.Slot) *model.Slot {
	out := *s
	if t, ok := m.topics.topics[s.TopicID]; ok {
		out.Topic = t
	}
	if s.ApplicantID != nil {
		if u, ok := m.users.users[*s.ApplicantID]; ok {
			out.Applicant = u
		}
	}
	return &out
}

func (m *mockSlotRepo) CreateBatch(_ context.Context, slots []model.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range slots {
		s := slots[i]
		if s.SlotID == "" {
			s.SlotID = fmt.Sprintf("slot-%d", len(m.slots)+1)
		}
		m.slots = append(m.slots, &s)
	}
	return nil
}

func (m *mockSlotRepo) ListByEvent(_ context.Context, eventID string) ([]model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Slot
	for _, s := range m.slots {
		if s.EventID == eventID {
			result = append(result, *m.decorate(s))
		}
	}
	return result, nil
}

func (m *mockSlotRepo) ListFreeByEvent(_ context.Context, eventID string) ([]model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Slot
	for _, s := range m.slots {
		if s.EventID == eventID && s.ApplicantID == nil {
			result = append(result, *m.decorate(s))
		}
	}
	return result, nil
}

func (m *mockSlotRepo) CountOccupied(_ context.Context, eventID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, s := range m.slots {
		if s.EventID == eventID && s.ApplicantID != nil {
			count++
		}
	}
	return count, nil
}

func (m *mockSlotRepo) GetUserSlot(_ context.Context, eventID, userID string) (*model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.slots {
		if s.EventID == eventID && s.ApplicantID != nil && *s.ApplicantID == userID {
			return m.decorate(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSlotRepo) CountUserFutureEvents(_ context.Context, userID string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, s := range m.slots {
		if s.ApplicantID == nil || *s.ApplicantID != userID {
			continue
		}
		if e, ok := m.events.events[s.EventID]; ok && !e.LabTime.Before(now) {
			count++
		}
	}
	return count, nil
}

func (m *mockSlotRepo) Claim(_ context.Context, eventID, topicID, userID string) (*model.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.slots {
		if s.EventID != eventID || s.TopicID != topicID {
			continue
		}
		if s.ApplicantID != nil {
			return nil, pkgerrors.ErrSlotOccupied
		}
		uid := userID
		s.ApplicantID = &uid
		return m.decorate(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSlotRepo) Release(_ context.Context, eventID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.slots {
		if s.EventID == eventID && s.ApplicantID != nil && *s.ApplicantID == userID {
			s.ApplicantID = nil
			return nil
		}
	}
	return pkgerrors.ErrNoActiveSlot
}

func (m *mockSlotRepo) DeleteByEvent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.slots[:0]
	for _, s := range m.slots {
		if s.EventID != eventID {
			kept = append(kept, s)
		}
	}
	m.slots = kept
	return nil
}

func (m *mockSlotRepo) DeleteByTopic(_ context.Context, topicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.slots[:0]
	for _, s := range m.slots {
		if s.TopicID != topicID {
			kept = append(kept, s)
		}
	}
	m.slots = kept
	return nil
}

// ── Assembly ──

type mockRepos struct {
	repo   *repository.Repository
	users  *mockUserRepo
	topics *mockTopicRepo
	events *mockEventRepo
	slots  *mockSlotRepo
}

func testConfig() *config.Config {
	return &config.Config{
		Labs: config.LabsConfig{
			MaxUserApplies:  3,
			PendingPageSize: 10,
		},
	}
}

func newMockRepos() *mockRepos {
	users := newMockUserRepo()
	topics := newMockTopicRepo(users)
	slots := newMockSlotRepo()
	events := newMockEventRepo(slots)
	slots.topics = topics
	slots.users = users
	slots.events = events

	return &mockRepos{
		repo: &repository.Repository{
			User:  users,
			Topic: topics,
			Event: events,
			Slot:  slots,
		},
		users:  users,
		topics: topics,
		events: events,
		slots:  slots,
	}
}

// ── Seed helpers ──

func (m *mockRepos) seedUser(id, email, fullName string) *model.User {
	u := &model.User{
		UserID:   id,
		Email:    email,
		FullName: fullName,
		Approved: true,
	}
	u.CreatedAt = time.Now().Add(-time.Duration(len(m.users.users)) * time.Minute)
	m.users.users[id] = u
	return u
}

func (m *mockRepos) seedTopic(id, title string) *model.Topic {
	t := &model.Topic{TopicID: id, Title: title}
	m.topics.topics[id] = t
	return t
}

// seedEvent writes an event with one open slot per topic, bypassing the
// service layer so tests can place events in the past.
func (m *mockRepos) seedEvent(id string, labTime, closeLogin, closeLogout time.Time, capacity int, topicIDs ...string) *model.Event {
	e := &model.Event{
		EventID:     id,
		LabTime:     labTime,
		CloseLogin:  closeLogin,
		CloseLogout: closeLogout,
		Capacity:    capacity,
	}
	m.events.events[id] = e
	for _, topicID := range topicIDs {
		m.slots.slots = append(m.slots.slots, &model.Slot{
			SlotID:  fmt.Sprintf("slot-%s-%s", id, topicID),
			EventID: id,
			TopicID: topicID,
		})
	}
	return e
}

// claim marks a seeded slot occupied directly.
func (m *mockRepos) claim(eventID, topicID, userID string) {
	for _, s := range m.slots.slots {
		if s.EventID == eventID && s.TopicID == topicID {
			uid := userID
			s.ApplicantID = &uid
			return
		}
	}
	panic("claim: no such slot " + eventID + "/" + topicID)
}
