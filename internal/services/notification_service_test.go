package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"dealercrm_backend/internal/email"
	"dealercrm_backend/internal/models"
	"dealercrm_backend/internal/prefs"
	"dealercrm_backend/internal/push"
	"dealercrm_backend/internal/repositories"
	"dealercrm_backend/internal/services/dto"
	"dealercrm_backend/ws"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// --- fakes ---

type fakeNotificationRepo struct {
	mu      sync.Mutex
	records map[string]*models.Notification
	failOn  map[string]bool // user ids whose Create fails
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		records: make(map[string]*models.Notification),
		failOn:  make(map[string]bool),
	}
}

func (r *fakeNotificationRepo) Create(n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn[n.UserID] {
		return errors.New("storage down")
	}
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	copied := *n
	r.records[n.ID] = &copied
	return nil
}

func (r *fakeNotificationRepo) CreateBulk(ns []*models.Notification) error {
	for _, n := range ns {
		if err := r.Create(n); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeNotificationRepo) FindByID(id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.records[id]
	if !ok {
		return nil, repositories.ErrNotificationNotFound
	}
	return n, nil
}

func (r *fakeNotificationRepo) FindUserNotifications(userID string, criteria repositories.NotificationCriteria) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.records {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) MarkRead(userID, id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.records[id]
	if !ok || n.UserID != userID {
		return nil, repositories.ErrNotificationNotFound
	}
	if !n.IsRead {
		now := time.Now().UTC()
		n.IsRead = true
		n.ReadAt = &now
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkAllRead(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.records {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) Delete(userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.records[id]
	if !ok || n.UserID != userID {
		return repositories.ErrNotificationNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakeNotificationRepo) DeleteAll(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, n := range r.records {
		if n.UserID == userID {
			delete(r.records, id)
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) UnreadCount(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.records {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) PurgeReadOlderThan(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, n := range r.records {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			delete(r.records, id)
			count++
		}
	}
	return count, nil
}

type fakePreferenceRepo struct {
	mu   sync.Mutex
	docs map[string]prefs.Document
	err  error
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{docs: make(map[string]prefs.Document)}
}

func (r *fakePreferenceRepo) set(userID string, doc prefs.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[userID] = doc
}

func (r *fakePreferenceRepo) FindOrCreate(userID string) (*models.NotificationPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	doc, ok := r.docs[userID]
	if !ok {
		doc = prefs.Defaults()
		r.docs[userID] = doc
	}
	return &models.NotificationPreference{
		UserID: userID,
		Doc:    datatypes.NewJSONType(doc),
	}, nil
}

func (r *fakePreferenceRepo) Save(p *models.NotificationPreference) error {
	r.set(p.UserID, p.Doc.Data())
	return nil
}

func (r *fakePreferenceRepo) DeleteForUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, userID)
	return nil
}

type fakePushRepo struct {
	mu      sync.Mutex
	subs    map[string][]models.PushSubscription
	deleted []string
}

func newFakePushRepo() *fakePushRepo {
	return &fakePushRepo{subs: make(map[string][]models.PushSubscription)}
}

func (r *fakePushRepo) Upsert(sub *models.PushSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.UserID] = append(r.subs[sub.UserID], *sub)
	return nil
}

func (r *fakePushRepo) FindByUser(userID string) ([]models.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subs[userID], nil
}

func (r *fakePushRepo) DeleteByEndpoint(userID, endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, sub := range r.subs[userID] {
		if sub.Endpoint == endpoint {
			r.subs[userID] = append(r.subs[userID][:i], r.subs[userID][i+1:]...)
			r.deleted = append(r.deleted, endpoint)
			return nil
		}
	}
	return repositories.ErrSubscriptionNotFound
}

func (r *fakePushRepo) PurgeEndpoint(endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, endpoint)
	return nil
}

func (r *fakePushRepo) DeleteForUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, userID)
	return nil
}

func (r *fakePushRepo) deletedEndpoints() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deleted...)
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (r *fakeUserRepo) Create(u *models.User) error { return nil }
func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}
func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	return nil, errors.New("not implemented")
}
func (r *fakeUserRepo) FindByRole(role models.UserRole) ([]models.User, error) { return nil, nil }
func (r *fakeUserRepo) Update(u *models.User) error                            { return nil }

type recordedBroadcast struct {
	Room     string
	ExceptID string
	Event    ws.Event
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedBroadcast
}

func (b *fakeBroadcaster) Broadcast(room string, ev ws.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedBroadcast{Room: room, Event: ev})
}

func (b *fakeBroadcaster) BroadcastExcept(room, exceptSessionID string, ev ws.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedBroadcast{Room: room, ExceptID: exceptSessionID, Event: ev})
}

func (b *fakeBroadcaster) all() []recordedBroadcast {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedBroadcast(nil), b.events...)
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []*email.Message
}

func (s *fakeEmailSender) Send(msg *email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeEmailSender) SendTemplate(to []string, subject, templateName string, data any) error {
	return nil
}

func (s *fakeEmailSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakePushSender struct {
	mu      sync.Mutex
	sent    []string // endpoints
	goneFor map[string]bool
}

func (s *fakePushSender) Send(sub *models.PushSubscription, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.goneFor[sub.Endpoint] {
		return push.ErrSubscriptionGone
	}
	s.sent = append(s.sent, sub.Endpoint)
	return nil
}

func (s *fakePushSender) sentEndpoints() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

// --- fixtures ---

type dispatcherFixture struct {
	svc      NotificationService
	repo     *fakeNotificationRepo
	prefRepo *fakePreferenceRepo
	pushRepo *fakePushRepo
	hub      *fakeBroadcaster
	email    *fakeEmailSender
	push     *fakePushSender
	userID   string
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()
	userID := uuid.NewString()
	f := &dispatcherFixture{
		repo:     newFakeNotificationRepo(),
		prefRepo: newFakePreferenceRepo(),
		pushRepo: newFakePushRepo(),
		hub:      &fakeBroadcaster{},
		email:    &fakeEmailSender{},
		push:     &fakePushSender{goneFor: make(map[string]bool)},
		userID:   userID,
	}
	users := &fakeUserRepo{users: map[string]*models.User{
		userID: {
			BaseModel: models.BaseModel{ID: userID},
			Email:     "agent@dealer.test",
			Phone:     "+15550001",
			Name:      "Agent",
			Role:      models.UserRoleAgent,
		},
	}}
	f.svc = NewNotificationService(
		f.repo, f.prefRepo, f.pushRepo, users,
		f.hub, f.email, nil, f.push,
	)
	return f
}

func (f *dispatcherFixture) input(priority string) dto.CreateNotificationInput {
	return dto.CreateNotificationInput{
		UserID:   f.userID,
		Type:     prefs.TypeLead,
		Title:    "New Lead Assigned",
		Message:  "Jane Doe has been assigned to you",
		Priority: priority,
	}
}

// --- tests ---

func TestCreateAndDeliver_BroadcastsToUserRoom(t *testing.T) {
	f := newDispatcherFixture(t)

	record, err := f.svc.CreateAndDeliver(f.input("normal"))
	require.NoError(t, err)
	require.NotEmpty(t, record.ID)
	assert.False(t, record.IsRead)

	events := f.hub.all()
	require.Len(t, events, 1)
	assert.Equal(t, ws.UserRoom(f.userID), events[0].Room)
	assert.Equal(t, ws.EventNotificationNew, events[0].Event.Type)
}

func TestCreateAndDeliver_InAppDisabledStillCreatesRecord(t *testing.T) {
	f := newDispatcherFixture(t)
	doc := prefs.Defaults()
	doc.InApp.Enabled = false
	f.prefRepo.set(f.userID, doc)

	record, err := f.svc.CreateAndDeliver(f.input("normal"))
	require.NoError(t, err)

	// Record persisted for later fetch even though no session was pushed.
	stored, err := f.repo.FindByID(record.ID)
	require.NoError(t, err)
	assert.Equal(t, f.userID, stored.UserID)
	assert.Empty(t, f.hub.all())
}

func TestCreateAndDeliver_PreferenceLookupFailureFailsOpen(t *testing.T) {
	f := newDispatcherFixture(t)
	f.prefRepo.err = errors.New("prefs table on fire")

	_, err := f.svc.CreateAndDeliver(f.input("normal"))
	require.NoError(t, err)

	// Defaults apply, so the in-app event still goes out.
	require.Len(t, f.hub.all(), 1)
}

func TestCreateAndDeliver_EmailOnlyOnHighPriorityByDefault(t *testing.T) {
	f := newDispatcherFixture(t)

	_, err := f.svc.CreateAndDeliver(f.input("normal"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, f.email.count(), "default email prefs are high-priority only")

	_, err = f.svc.CreateAndDeliver(f.input("high"))
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return f.email.count() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestCreateAndDeliver_ExpiredPushSubscriptionRemoved(t *testing.T) {
	f := newDispatcherFixture(t)
	f.pushRepo.Upsert(&models.PushSubscription{UserID: f.userID, Endpoint: "https://push/alive"})
	f.pushRepo.Upsert(&models.PushSubscription{UserID: f.userID, Endpoint: "https://push/stale"})
	f.push.goneFor["https://push/stale"] = true

	doc := prefs.Defaults()
	doc.Push.Enabled = true
	f.prefRepo.set(f.userID, doc)

	_, err := f.svc.CreateAndDeliver(f.input("normal"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(f.push.sentEndpoints()) == 1 && len(f.pushRepo.deletedEndpoints()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"https://push/stale"}, f.pushRepo.deletedEndpoints())
}

func TestCreateAndDeliverMany_IsolatesPerRecipientFailures(t *testing.T) {
	f := newDispatcherFixture(t)
	okUser := uuid.NewString()
	badUser := uuid.NewString()
	f.repo.failOn[badUser] = true

	created := f.svc.CreateAndDeliverMany([]string{okUser, badUser, f.userID}, dto.CreateNotificationInput{
		Type:  prefs.TypeSystem,
		Title: "Maintenance tonight",
	})

	require.Len(t, created, 2, "one failed recipient must not abort the batch")
	for _, record := range created {
		assert.NotEqual(t, badUser, record.UserID)
	}
}

func TestMarkRead_BroadcastsEchoExceptOrigin(t *testing.T) {
	f := newDispatcherFixture(t)
	record, err := f.svc.CreateAndDeliver(f.input("normal"))
	require.NoError(t, err)

	originSession := uuid.NewString()
	require.NoError(t, f.svc.MarkRead(f.userID, record.ID, originSession))

	events := f.hub.all()
	require.Len(t, events, 2) // new + read
	readEv := events[1]
	assert.Equal(t, ws.EventNotificationRead, readEv.Event.Type)
	assert.Equal(t, ws.UserRoom(f.userID), readEv.Room)
	assert.Equal(t, originSession, readEv.ExceptID)
	assert.Equal(t, ws.ReadPayload{ID: record.ID}, readEv.Event.Payload)

	stored, err := f.repo.FindByID(record.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)
	assert.NotNil(t, stored.ReadAt)
}

func TestMarkRead_UnknownRecordIsNoOp(t *testing.T) {
	f := newDispatcherFixture(t)

	err := f.svc.MarkRead(f.userID, uuid.NewString(), "")
	require.NoError(t, err)
	assert.Empty(t, f.hub.all(), "no control event for a record that does not exist")
}

func TestMarkRead_IsIdempotent(t *testing.T) {
	f := newDispatcherFixture(t)
	record, err := f.svc.CreateAndDeliver(f.input("normal"))
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkRead(f.userID, record.ID, ""))
	first, _ := f.repo.FindByID(record.ID)
	firstReadAt := *first.ReadAt

	require.NoError(t, f.svc.MarkRead(f.userID, record.ID, ""))
	second, _ := f.repo.FindByID(record.ID)
	assert.Equal(t, firstReadAt, *second.ReadAt, "read_at must keep its original value")
}

func TestMarkAllRead_Broadcasts(t *testing.T) {
	f := newDispatcherFixture(t)
	_, err := f.svc.CreateAndDeliver(f.input("normal"))
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkAllRead(f.userID, "origin-1"))

	events := f.hub.all()
	last := events[len(events)-1]
	assert.Equal(t, ws.EventMarkAllRead, last.Event.Type)
	assert.Equal(t, "origin-1", last.ExceptID)

	unread, err := f.svc.UnreadCount(f.userID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestDelete_NoControlBroadcast(t *testing.T) {
	f := newDispatcherFixture(t)
	record, err := f.svc.CreateAndDeliver(f.input("normal"))
	require.NoError(t, err)
	before := len(f.hub.all())

	require.NoError(t, f.svc.Delete(f.userID, record.ID, ""))
	assert.Len(t, f.hub.all(), before, "delete is not an exposed event")

	// Deleting again is a no-op, not an error.
	require.NoError(t, f.svc.Delete(f.userID, record.ID, ""))
}

func TestPurgeOld_OnlyReadRecords(t *testing.T) {
	f := newDispatcherFixture(t)
	oldRead, err := f.svc.CreateAndDeliver(f.input("normal"))
	require.NoError(t, err)
	oldUnread, err := f.svc.CreateAndDeliver(f.input("normal"))
	require.NoError(t, err)
	require.NoError(t, f.svc.MarkRead(f.userID, oldRead.ID, ""))

	// Age both records past the retention window.
	f.repo.mu.Lock()
	for _, n := range f.repo.records {
		n.CreatedAt = time.Now().UTC().AddDate(0, 0, -60)
	}
	f.repo.mu.Unlock()

	purged, err := f.svc.PurgeOld(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = f.repo.FindByID(oldUnread.ID)
	assert.NoError(t, err, "unread records survive retention regardless of age")
}
