package service

import (
	"github.com/goalhub/goalhub/internal/cache"
	"github.com/goalhub/goalhub/internal/model"
	"github.com/goalhub/goalhub/internal/repository"
)

// UserService is the user directory facade. Lookups by id go through a
// short-TTL read-through cache; every write invalidates its entry so the
// only staleness window is the TTL itself.
type UserService struct {
	repo repository.UserRepository
	byID *cache.TTL[int64, *model.User]
}

func NewUserService(repo repository.UserRepository, byID *cache.TTL[int64, *model.User]) *UserService {
	return &UserService{
		repo: repo,
		byID: byID,
	}
}

func (s *UserService) ByID(id int64) (*model.User, error) {
	return s.byID.GetOrPopulate(id, func() (*model.User, error) {
		return s.repo.ByID(id)
	})
}

func (s *UserService) ByName(name string) (*model.User, error) {
	return s.repo.ByName(name)
}

func (s *UserService) ByEmail(email string) (*model.User, error) {
	return s.repo.ByEmail(email)
}

func (s *UserService) Create(user *model.User) error {
	err := s.repo.Create(user)
	if err != nil {
		return err
	}

	s.byID.Set(user.ID, user)
	return nil
}

func (s *UserService) Update(user *model.User) error {
	err := s.repo.Update(user)
	if err != nil {
		return err
	}

	s.byID.Invalidate(user.ID)
	return nil
}

func (s *UserService) Delete(id int64) error {
	err := s.repo.Delete(id)
	if err != nil {
		return err
	}

	s.byID.Invalidate(id)
	return nil
}
