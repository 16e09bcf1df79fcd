package friends

import (
	"time"

	"github.com/jason-s-yu/friendgraph/internal/models"
)

// seedFriends is the demo friend list that is always present and never persisted.
// Timestamps are relative to now so the list looks fresh on every start.
func seedFriends(now time.Time) []models.Friend {
	return []models.Friend{
		{
			ID:            "1",
			Name:          "أحمد محمد",
			Avatar:        "https://images.pexels.com/photos/220453/pexels-photo-220453.jpeg",
			Email:         "ahmed@example.com",
			Phone:         "+218-91-123-4567",
			IsOnline:      true,
			LastSeen:      now,
			MutualFriends: 5,
		},
		{
			ID:            "2",
			Name:          "فاطمة علي",
			Avatar:        "https://images.pexels.com/photos/415829/pexels-photo-415829.jpeg",
			Email:         "fatima@example.com",
			Phone:         "+218-92-234-5678",
			IsOnline:      false,
			LastSeen:      now.Add(-2 * time.Hour),
			MutualFriends: 3,
		},
		{
			ID:            "3",
			Name:          "محمد الصادق",
			Avatar:        "https://images.pexels.com/photos/1222271/pexels-photo-1222271.jpeg",
			Email:         "mohamed@example.com",
			Phone:         "+218-93-345-6789",
			IsOnline:      true,
			LastSeen:      now,
			MutualFriends: 8,
		},
		{
			ID:            "4",
			Name:          "عائشة حسن",
			Avatar:        "https://images.pexels.com/photos/1130626/pexels-photo-1130626.jpeg",
			Email:         "aisha@example.com",
			Phone:         "+218-94-456-7890",
			IsOnline:      false,
			LastSeen:      now.Add(-24 * time.Hour),
			MutualFriends: 2,
		},
	}
}

// seedRequests is the demo set of incoming requests.
func seedRequests(now time.Time) []models.FriendRequest {
	return []models.FriendRequest{
		{
			ID:             "1",
			FromUserID:     "5",
			FromUserName:   "سارة أحمد",
			FromUserAvatar: "https://images.pexels.com/photos/1130626/pexels-photo-1130626.jpeg",
			ToUserID:       models.LocalUserID,
			Message:        "مرحباً! أود إضافتك كصديق",
			Status:         models.RequestPending,
			CreatedAt:      now.Add(-30 * time.Minute),
		},
		{
			ID:             "2",
			FromUserID:     "6",
			FromUserName:   "خالد محمود",
			FromUserAvatar: "https://images.pexels.com/photos/1043471/pexels-photo-1043471.jpeg",
			ToUserID:       models.LocalUserID,
			Status:         models.RequestPending,
			CreatedAt:      now.Add(-2 * time.Hour),
		},
	}
}
