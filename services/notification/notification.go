package notification

import (
	"context"
	"fmt"

	"helper/utils"

	"firebase.google.com/go/v4/messaging"

	providerRepo "helper/database/repository/provider"
	userRepo "helper/database/repository/user"
)

// Service defines methods for sending FCM pushes.
type Service interface {
	SendUserPush(ctx context.Context, userID, title, body string, data map[string]string) error
	SendProviderPush(ctx context.Context, providerID, title, body string, data map[string]string) error
}

// FCMService is the production implementation.
type FCMService struct {
	Users     userRepo.Repository
	Providers providerRepo.Repository
}

func NewFCMService(users userRepo.Repository, providers providerRepo.Repository) *FCMService {
	return &FCMService{Users: users, Providers: providers}
}

func (s *FCMService) SendUserPush(ctx context.Context, userID, title, body string, data map[string]string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("SendUserPush: could not find user %s: %w", userID, err)
	}
	return send(ctx, u.FCMToken, title, body, data)
}

func (s *FCMService) SendProviderPush(ctx context.Context, providerID, title, body string, data map[string]string) error {
	p, err := s.Providers.GetByID(ctx, providerID)
	if err != nil {
		return fmt.Errorf("SendProviderPush: could not find provider %s: %w", providerID, err)
	}
	return send(ctx, p.FCMToken, title, body, data)
}

func send(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("recipient has no FCM token")
	}
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}
