package handlers

import (
	"context"
	"sync"
	"time"

	"tablemate-backend/application/commands"
	"tablemate-backend/domain/core/entities"
	"tablemate-backend/domain/core/valueobjects"
	"tablemate-backend/domain/events"
	pkgerrors "tablemate-backend/pkg/errors"
)

var handlerNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }

// fakeUserRepo keeps users in insertion order so ranking tests stay
// deterministic.
type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*entities.User
	order     []string
	findErr   error
	findCalls int
}

func newFakeUserRepo(users ...*entities.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entities.User)}
	for _, user := range users {
		repo.put(user)
	}
	return repo
}

func (r *fakeUserRepo) put(user *entities.User) {
	key := user.ID().String()
	if _, exists := r.users[key]; !exists {
		r.order = append(r.order, key)
	}
	r.users[key] = user
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id valueobjects.UserID) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("user " + id.String())
	}
	return user, nil
}

func (r *fakeUserRepo) Save(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(user)
	return nil
}

func (r *fakeUserRepo) FindActive(ctx context.Context) ([]*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	active := make([]*entities.User, 0, len(r.order))
	for _, key := range r.order {
		if user := r.users[key]; user.IsActive() {
			active = append(active, user)
		}
	}
	return active, nil
}

func (r *fakeUserRepo) ApplyRating(ctx context.Context, id valueobjects.UserID, value float64, now time.Time) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("user " + id.String())
	}
	if err := user.ApplyRating(value, now); err != nil {
		return nil, err
	}
	return user, nil
}

type fakePlanRepo struct {
	mu           sync.Mutex
	plans        map[string]*entities.DiningPlan
	order        []string
	findErr      error
	confirmErr   error
	expireErr    error
	confirmCalls int
	expireCalls  int
}

func newFakePlanRepo(plans ...*entities.DiningPlan) *fakePlanRepo {
	repo := &fakePlanRepo{plans: make(map[string]*entities.DiningPlan)}
	for _, plan := range plans {
		repo.put(plan)
	}
	return repo
}

func (r *fakePlanRepo) put(plan *entities.DiningPlan) {
	key := plan.ID().String()
	if _, exists := r.plans[key]; !exists {
		r.order = append(r.order, key)
	}
	r.plans[key] = plan
}

func (r *fakePlanRepo) GetByID(ctx context.Context, id valueobjects.PlanID) (*entities.DiningPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("plan " + id.String())
	}
	return plan, nil
}

func (r *fakePlanRepo) Save(ctx context.Context, plan *entities.DiningPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(plan)
	return nil
}

func (r *fakePlanRepo) AddMember(ctx context.Context, id valueobjects.PlanID, userID string, now time.Time) (*entities.DiningPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("plan " + id.String())
	}
	if err := plan.AddMember(userID, now); err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *fakePlanRepo) ConfirmWithCodes(ctx context.Context, plan *entities.DiningPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmCalls++
	if r.confirmErr != nil {
		return r.confirmErr
	}
	r.put(plan)
	return nil
}

func (r *fakePlanRepo) FindOpen(ctx context.Context) ([]*entities.DiningPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var open []*entities.DiningPlan
	for _, key := range r.order {
		if plan := r.plans[key]; plan.Status() == valueobjects.StatusOpen {
			open = append(open, plan)
		}
	}
	return open, nil
}

func (r *fakePlanRepo) FindConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*entities.DiningPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var matches []*entities.DiningPlan
	for _, key := range r.order {
		plan := r.plans[key]
		if plan.Status() != valueobjects.StatusConfirmed {
			continue
		}
		if plan.PlannedTime().Before(from) || plan.PlannedTime().After(to) {
			continue
		}
		matches = append(matches, plan)
	}
	return matches, nil
}

func (r *fakePlanRepo) FindExpirable(ctx context.Context, before time.Time) ([]*entities.DiningPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var stale []*entities.DiningPlan
	for _, key := range r.order {
		plan := r.plans[key]
		if plan.Status().IsExpirable() && plan.PlannedTime().Before(before) {
			stale = append(stale, plan)
		}
	}
	return stale, nil
}

func (r *fakePlanRepo) ExpireBatch(ctx context.Context, plans []*entities.DiningPlan, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireCalls++
	if r.expireErr != nil {
		return r.expireErr
	}
	for _, plan := range plans {
		if err := plan.Expire(now); err != nil {
			return err
		}
		r.put(plan)
	}
	return nil
}

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[string]*entities.Rating
	saveErr error
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[string]*entities.Rating)}
}

func (r *fakeRatingRepo) Save(ctx context.Context, rating *entities.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.ratings[rating.ID().String()] = rating
	return nil
}

func (r *fakeRatingRepo) GetByID(ctx context.Context, id valueobjects.RatingID) (*entities.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rating, ok := r.ratings[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("rating " + id.String())
	}
	return rating, nil
}

type sentPush struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// fakeNotifier records pushes; fan-outs run concurrently so access is locked.
type fakeNotifier struct {
	mu         sync.Mutex
	sends      []sentPush
	failTokens map[string]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failTokens: make(map[string]error)}
}

func (n *fakeNotifier) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.failTokens[deviceToken]; ok {
		return err
	}
	n.sends = append(n.sends, sentPush{Token: deviceToken, Title: title, Body: body, Data: data})
	return nil
}

func (n *fakeNotifier) sentTokens() map[string]bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	tokens := make(map[string]bool, len(n.sends))
	for _, push := range n.sends {
		tokens[push.Token] = true
	}
	return tokens
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sends)
}

type fakeEventBus struct {
	mu      sync.Mutex
	events  []events.DomainEvent
	failErr error
}

func (b *fakeEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failErr != nil {
		return b.failErr
	}
	b.events = append(b.events, event)
	return nil
}

func (b *fakeEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failErr != nil {
		return b.failErr
	}
	b.events = append(b.events, batch...)
	return nil
}

// newActiveUser builds a ready-to-match user with a device token
func newActiveUser(company, deviceToken string, prefs []string, trustScore float64, premium bool) *entities.User {
	return entities.ReconstructUser(
		valueobjects.NewUserID(),
		company,
		prefs,
		trustScore,
		1,
		premium,
		true,
		handlerNow,
		time.Time{},
		deviceToken,
		1,
		handlerNow.Add(-30*24*time.Hour),
		handlerNow.Add(-30*24*time.Hour),
	)
}

// fakeCache is an in-memory ports.Cache that records the TTL each entry
// was stored with
type fakeCache struct {
	mu     sync.Mutex
	values map[string]interface{}
	ttls   map[string]int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		values: make(map[string]interface{}),
		ttls:   make(map[string]int),
	}
}

func (c *fakeCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[key]
	return value, ok
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	c.ttls[key] = ttlSeconds
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	delete(c.ttls, key)
	return nil
}

// planSnapshot builds a stream image for trigger commands
func planSnapshot(planID, creatorID string, status string, memberIDs []string, maxMembers int) commands.PlanSnapshot {
	return commands.PlanSnapshot{
		PlanID:         planID,
		CreatorID:      creatorID,
		CreatorCompany: "Acme",
		Status:         status,
		CuisineTypes:   []string{"thai", "sushi"},
		MemberIDs:      memberIDs,
		MaxMembers:     maxMembers,
		RestaurantName: "Izakaya Torch",
		PlannedTime:    handlerNow.Add(48 * time.Hour),
	}
}
