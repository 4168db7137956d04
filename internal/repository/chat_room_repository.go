package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classgotcha-api/internal/models"
)

// ChatRoomRepository persists classroom chat rooms.
type ChatRoomRepository struct {
	db sqlx.ExtContext
}

// NewChatRoomRepository constructs a chat room repository.
func NewChatRoomRepository(db sqlx.ExtContext) *ChatRoomRepository {
	return &ChatRoomRepository{db: db}
}

// Create opens the chat room of a classroom; one room per classroom.
func (r *ChatRoomRepository) Create(ctx context.Context, room *models.ChatRoom) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO chat_rooms (id, classroom_id, name, creator_id, created_at) VALUES (:id, :classroom_id, :name, :creator_id, :created_at) ON CONFLICT (classroom_id) DO NOTHING`
	return insertOnce(ctx, r.db, "create chat room", query, room)
}
