package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"foodgram/internal/models"
	"foodgram/internal/repositories"
)

// UserService serves user profiles and subscription listings.
type UserService struct {
	users         repositories.UserRepository
	relations     repositories.RelationRepository
	subscriptions subscriptionViewer
	pageSize      int
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, recipes repositories.RecipeRepository, relations repositories.RelationRepository, pageSize int) *UserService {
	return &UserService{
		users:         users,
		relations:     relations,
		subscriptions: subscriptionViewer{recipes: recipes, relations: relations},
		pageSize:      pageSize,
	}
}

// ParseRecipesLimit reads the recipes_limit query value. Empty means no limit.
func ParseRecipesLimit(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, invalid("recipes_limit", "Ensure this value is a non-negative integer.")
	}
	return &n, nil
}

// Me returns the requester's own profile.
func (s *UserService) Me(requester *models.User) UserView {
	return newUserView(requester, false)
}

// GetUser returns one profile. requester may be nil.
func (s *UserService) GetUser(ctx context.Context, requester *models.User, id uint) (UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return UserView{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return UserView{}, err
	}
	subscribed, err := s.isSubscribed(ctx, requester, []uint{id})
	if err != nil {
		return UserView{}, err
	}
	return newUserView(user, subscribed[id]), nil
}

// ListUsers returns one page of users ordered by id. requester may be nil.
func (s *UserService) ListUsers(ctx context.Context, requester *models.User, req PageRequest) (Page[UserView], error) {
	page, size := req.normalize(s.pageSize)
	users, total, err := s.users.List(ctx, (page-1)*size, size)
	if err != nil {
		return Page[UserView]{}, err
	}
	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := s.isSubscribed(ctx, requester, ids)
	if err != nil {
		return Page[UserView]{}, err
	}
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i], subscribed[users[i].ID]))
	}
	return Page[UserView]{Count: total, Page: page, PageSize: size, Results: views}, nil
}

// ListSubscriptions returns the authors the requester follows with recipe previews
// truncated to recipesLimit when set.
func (s *UserService) ListSubscriptions(ctx context.Context, requester *models.User, req PageRequest, recipesLimit *int) (Page[SubscriptionView], error) {
	page, size := req.normalize(s.pageSize)
	authors, total, err := s.relations.SubscribedAuthors(ctx, requester.ID, (page-1)*size, size)
	if err != nil {
		return Page[SubscriptionView]{}, err
	}
	views, err := s.subscriptions.build(ctx, requester, authors, recipesLimit)
	if err != nil {
		return Page[SubscriptionView]{}, err
	}
	return Page[SubscriptionView]{Count: total, Page: page, PageSize: size, Results: views}, nil
}

func (s *UserService) isSubscribed(ctx context.Context, requester *models.User, ids []uint) (map[uint]bool, error) {
	if requester == nil {
		return map[uint]bool{}, nil
	}
	subscribed, err := s.relations.Targets(ctx, repositories.RelationSubscription, requester.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve subscriptions: %w", err)
	}
	return subscribed, nil
}
