package notify

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// messenger is the part of *messaging.Client the push channel uses.
type messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushChannel publishes notifications to the per-user FCM topic that the
// mobile apps subscribe to after login.
type PushChannel struct {
	client messenger
}

func NewPushChannel(ctx context.Context, credentialsFile, projectID string) (*PushChannel, error) {
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &PushChannel{client: client}, nil
}

func (c *PushChannel) Name() string { return "fcm" }

// UserTopic is the FCM topic a user's devices subscribe to.
func UserTopic(userID int32) string {
	return fmt.Sprintf("user-%d", userID)
}

func (c *PushChannel) Send(ctx context.Context, msg Message) error {
	data := map[string]string{"type": string(msg.Type)}
	if msg.RelatedID != nil {
		data["related_id"] = strconv.Itoa(int(*msg.RelatedID))
	}
	_, err := c.client.Send(ctx, &messaging.Message{
		Topic: UserTopic(msg.UserID),
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	return nil
}
