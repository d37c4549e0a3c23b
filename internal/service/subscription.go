package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/model"
	"github.com/sakif/codigoteca/internal/repository"
)

// SubscriptionService links users to the categories they follow and builds
// their feed.
type SubscriptionService struct {
	subscriptions repository.SubscriptionRepository
	categories    repository.CategoryRepository
	logger        *slog.Logger
}

func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	categories repository.CategoryRepository,
	logger *slog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		categories:    categories,
		logger:        logger,
	}
}

func (s *SubscriptionService) ListByUser(ctx context.Context, userID int64) ([]model.Subscription, error) {
	subs, err := s.subscriptions.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: listing subscriptions of user %d: %w", userID, err)
	}
	return subs, nil
}

func (s *SubscriptionService) GetByID(ctx context.Context, id int64) (*model.Subscription, error) {
	sub, err := s.subscriptions.GetSubscriptionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: loading subscription %d: %w", id, err)
	}
	return sub, nil
}

// Create subscribes userID to categoryID. notifications defaults to true when
// nil. The category must exist and the pair must be new.
func (s *SubscriptionService) Create(ctx context.Context, userID, categoryID int64, notifications *bool) (*model.Subscription, error) {
	if err := requirePositive("id_usuario", userID); err != nil {
		return nil, err
	}
	if err := requirePositive("id_categoria", categoryID); err != nil {
		return nil, err
	}
	if _, err := s.categories.GetCategoryByID(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("service: loading category %d: %w", categoryID, err)
	}

	sub := &model.Subscription{
		UserID:        userID,
		CategoryID:    categoryID,
		Notifications: notifications == nil || *notifications,
	}
	if err := s.subscriptions.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("service: creating subscription: %w", err)
	}

	s.logger.Info("subscription created",
		slog.Int64("id", sub.ID),
		slog.Int64("userID", userID),
		slog.Int64("categoryID", categoryID),
	)
	return sub, nil
}

// Update changes the notification preference. Both arguments are required.
func (s *SubscriptionService) Update(ctx context.Context, id int64, notifications *bool) (*model.Subscription, error) {
	if err := requirePositive("id_suscripciones", id); err != nil {
		return nil, err
	}
	if notifications == nil {
		return nil, apperror.ValidationFailed("notificaciones", "notificaciones is required")
	}

	sub, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sub.Notifications = *notifications
	if err := s.subscriptions.UpdateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("service: updating subscription %d: %w", id, err)
	}

	s.logger.Info("subscription updated", slog.Int64("id", id), slog.Bool("notificaciones", sub.Notifications))
	return sub, nil
}

func (s *SubscriptionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	deleted, err := s.subscriptions.DeleteSubscription(ctx, id)
	if err != nil {
		return fmt.Errorf("service: deleting subscription %d: %w", id, err)
	}
	if !deleted {
		return apperror.DeleteFailed("subscription", id)
	}

	s.logger.Info("subscription deleted", slog.Int64("id", id))
	return nil
}

// Feed returns the codes linked to the active categories userID follows,
// newest code first.
func (s *SubscriptionService) Feed(ctx context.Context, userID int64) ([]model.FeedItem, error) {
	feed, err := s.subscriptions.FeedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: building feed of user %d: %w", userID, err)
	}
	return feed, nil
}
