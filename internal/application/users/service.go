package users

import "time"

type Service struct {
	users  UserRepo
	hasher PasswordHasher
	pub    EventPublisher

	now   func() time.Time
	audit func(action string, fields map[string]string)
	warn  func(msg string, err error)
}

func NewService(users UserRepo, hasher PasswordHasher, pub EventPublisher) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		pub:    pub,
		now:    time.Now,
		audit:  func(string, map[string]string) {},
		warn:   func(string, error) {},
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// WithWarn installs the sink for non-fatal failures (event publishing).
func (s *Service) WithWarn(fn func(msg string, err error)) *Service {
	if fn != nil {
		s.warn = fn
	}
	return s
}
