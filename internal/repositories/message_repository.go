package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/models"
)

var ErrEmptyContent = errors.New("message content is empty")

// MessageRepository abstracts the durable message log.
type MessageRepository interface {
	CreateMessage(ctx context.Context, senderID, receiverID int64, content string) (models.Message, error)
	ListConversation(ctx context.Context, userID, peerID int64, page, limit int) ([]models.Message, error)
	ListThreadSummaries(ctx context.Context, userID int64, page, limit int) ([]models.ThreadSummary, error)
	MarkThreadRead(ctx context.Context, fromUserID, toUserID int64) (matched int64, modified int64, err error)
}

// MessageRepo is a sqlx-backed MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage appends a message to the log. The store assigns the id and
// timestamp; read starts false.
func (r *MessageRepo) CreateMessage(ctx context.Context, senderID, receiverID int64, content string) (models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return models.Message{}, ErrEmptyContent
	}

	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (sender_id, receiver_id, content)
        VALUES ($1, $2, $3)
        RETURNING id, sender_id, receiver_id, content, read, created_at`, senderID, receiverID, content).
		Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.Read, &msg.CreatedAt)
	return msg, err
}

// ListConversation returns a page of messages between two users, newest first.
// Callers re-sort ascending for display.
func (r *MessageRepo) ListConversation(ctx context.Context, userID, peerID int64, page, limit int) ([]models.Message, error) {
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	query := `SELECT id, sender_id, receiver_id, content, read, created_at
        FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at DESC, id DESC
        LIMIT $3 OFFSET $4`
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, query, userID, peerID, limit, offset)
	return msgs, err
}

// ListThreadSummaries derives one summary per peer: the latest message
// exchanged with that peer plus the count of unread messages they sent to the
// requesting user, ordered by latest message time descending.
func (r *MessageRepo) ListThreadSummaries(ctx context.Context, userID int64, page, limit int) ([]models.ThreadSummary, error) {
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	query := `WITH conversation AS (
            SELECT m.*,
                   CASE WHEN m.sender_id=$1 THEN m.receiver_id ELSE m.sender_id END AS peer_id
            FROM messages m
            WHERE m.sender_id=$1 OR m.receiver_id=$1
        ), latest AS (
            SELECT DISTINCT ON (peer_id) *
            FROM conversation
            ORDER BY peer_id, created_at DESC, id DESC
        )
        SELECT l.id, l.sender_id, l.receiver_id, l.content, l.read, l.created_at,
               u.id AS peer_user_id, u.email AS peer_email, u.fullname AS peer_fullname,
               u.is_online AS peer_is_online, u.created_at AS peer_created_at,
               COALESCE(unread.count, 0) AS unread_count
        FROM latest l
        JOIN users u ON u.id = l.peer_id
        LEFT JOIN (
            SELECT sender_id, COUNT(*) AS count
            FROM messages
            WHERE receiver_id=$1 AND read = FALSE
            GROUP BY sender_id
        ) unread ON unread.sender_id = l.peer_id
        ORDER BY l.created_at DESC, l.id DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryxContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.ThreadSummary{}
	for rows.Next() {
		var row struct {
			models.Message
			PeerUserID    int64  `db:"peer_user_id"`
			PeerEmail     string `db:"peer_email"`
			PeerFullname  string `db:"peer_fullname"`
			PeerIsOnline  bool      `db:"peer_is_online"`
			PeerCreatedAt time.Time `db:"peer_created_at"`
			UnreadCount   int       `db:"unread_count"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		summaries = append(summaries, models.ThreadSummary{
			User: models.User{
				ID:        row.PeerUserID,
				Email:     row.PeerEmail,
				Fullname:  row.PeerFullname,
				IsOnline:  row.PeerIsOnline,
				CreatedAt: row.PeerCreatedAt,
			},
			LastMessage: row.Message,
			UnreadCount: row.UnreadCount,
		})
	}
	return summaries, rows.Err()
}

// MarkThreadRead flips read on every unread message from one sender to the
// requester. Only rows unread at call time are touched.
func (r *MessageRepo) MarkThreadRead(ctx context.Context, fromUserID, toUserID int64) (int64, int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET read = TRUE
        WHERE sender_id=$1 AND receiver_id=$2 AND read = FALSE`, fromUserID, toUserID)
	if err != nil {
		return 0, 0, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, 0, err
	}
	return count, count, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 30
	}
	return page, limit
}
