package users

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/signup-service/internal/domain"
)

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byEmail map[string]domain.User
	nextID  int

	// injected errors (if set, method returns error)
	findErr   error
	createErr error

	// hideOnFind makes FindByEmail miss rows that Create will still reject,
	// which is what a concurrent duplicate looks like.
	hideOnFind bool

	findCalls   int
	createCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]domain.User{}}
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.findCalls++
	if f.findErr != nil {
		return domain.User{}, false, f.findErr
	}
	if f.hideOnFind {
		return domain.User{}, false, nil
	}
	u, ok := f.byEmail[email]
	return u, ok, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	u.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byEmail)
}

type fakeHasher struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (h *fakeHasher) Hash(password string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls++
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []domain.UserRegistered
}

func (p *fakePublisher) PublishUserRegistered(ctx context.Context, evt domain.UserRegistered) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

type harness struct {
	svc    *Service
	repo   *fakeUserRepo
	hasher *fakeHasher
	pub    *fakePublisher

	audits []auditEntry
	warns  []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		repo:   newFakeUserRepo(),
		hasher: &fakeHasher{},
		pub:    &fakePublisher{},
	}
	h.svc = NewService(h.repo, h.hasher, h.pub).
		WithAudit(func(action string, fields map[string]string) {
			h.audits = append(h.audits, auditEntry{action: action, fields: fields})
		}).
		WithWarn(func(msg string, err error) {
			h.warns = append(h.warns, msg)
		})
	h.svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return h
}

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}
