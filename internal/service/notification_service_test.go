package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/marketbay/internal/constants"
	"github.com/marketbay/internal/models"
	"github.com/marketbay/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestCreateNotificationValidation(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	cases := []CreateNotificationInput{
		{Type: constants.NotificationTypeSale, Title: "sale"},
		{UserID: 1, Title: "sale"},
		{UserID: 1, Type: constants.NotificationTypeSale},
	}
	for i, input := range cases {
		if _, err := svc.Create(input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}

	created, err := svc.Create(CreateNotificationInput{
		UserID:  1,
		Type:    constants.NotificationTypeSale,
		Title:   "New sale",
		Content: "you sold something",
		Link:    "/vendor/transactions",
		Payload: models.JSON{"order_id": 42},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.IsRead {
		t.Fatalf("expected new notification unread")
	}
	if created.Link != "/vendor/transactions" {
		t.Fatalf("expected notification link, got %q", created.Link)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	var first *models.Notification
	for i := 0; i < 3; i++ {
		n, err := svc.Create(CreateNotificationInput{
			UserID: 7,
			Type:   constants.NotificationTypeSale,
			Title:  fmt.Sprintf("sale %d", i),
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if first == nil {
			first = n
		}
	}

	count, err := svc.UnreadCount(7)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 unread, got %d", count)
	}

	if err := svc.MarkRead(7, first.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	// 重复标记已读是幂等的
	if err := svc.MarkRead(7, first.ID); err != nil {
		t.Fatalf("repeat mark read failed: %v", err)
	}

	count, err = svc.UnreadCount(7)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread after mark read, got %d", count)
	}
}

func TestMarkReadRejectsForeignNotification(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	n, err := svc.Create(CreateNotificationInput{
		UserID: 1,
		Type:   constants.NotificationTypeSale,
		Title:  "mine",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.MarkRead(2, n.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound for foreign user, got %v", err)
	}
	if err := svc.MarkRead(1, n.ID+999); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound for missing id, got %v", err)
	}
}

func TestMarkAllRead(t *testing.T) {
	svc, _ := setupNotificationServiceTest(t)

	for i := 0; i < 4; i++ {
		if _, err := svc.Create(CreateNotificationInput{
			UserID: 3,
			Type:   constants.NotificationTypeOrderCompleted,
			Title:  fmt.Sprintf("order %d", i),
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if _, err := svc.Create(CreateNotificationInput{
		UserID: 4,
		Type:   constants.NotificationTypeOrderCompleted,
		Title:  "other user",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	affected, err := svc.MarkAllRead(3)
	if err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	if affected != 4 {
		t.Fatalf("expected 4 affected, got %d", affected)
	}

	count, err := svc.UnreadCount(3)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}

	otherCount, err := svc.UnreadCount(4)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if otherCount != 1 {
		t.Fatalf("expected other user's notifications untouched, got %d", otherCount)
	}
}

func setupNotificationServiceTest(t *testing.T) (*NotificationService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:notification_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	svc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	return svc, db
}
