package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// EncryptedPayload is the client-encrypted content envelope the server
// stores and returns verbatim. The server never decrypts; kid is an
// optional client key identifier.
type EncryptedPayload struct {
	Ciphertext string  `json:"ciphertext"`
	IV         string  `json:"iv"`
	Alg        string  `json:"alg"`
	V          int     `json:"v"`
	KID        *string `json:"kid"`
}

// Message is one encrypted chat turn. (thread_id, client_message_id) dedupes
// client retries; (thread_id, seq) serializes concurrent appends. Seq is
// assigned inside the insert statement, and a seq collision is retried while
// a client_message_id collision is answered with the existing row.
type Message struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RunID    uuid.UUID `gorm:"type:uuid;not null;index" json:"run_id"`
	ThreadID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_messages_thread_seq,unique,priority:1;index:idx_messages_thread_client,unique,priority:1" json:"thread_id"`
	UserID   string    `gorm:"type:text;not null;index" json:"user_id"`

	Role            string `gorm:"column:role;not null" json:"role"`
	ClientMessageID string `gorm:"column:client_message_id;type:text;not null;index:idx_messages_thread_client,unique,priority:2" json:"client_message_id"`

	Ciphertext string  `gorm:"column:ciphertext;type:text;not null" json:"ciphertext"`
	IV         string  `gorm:"column:iv;type:text;not null" json:"iv"`
	Alg        string  `gorm:"column:alg;type:text;not null" json:"alg"`
	V          int     `gorm:"column:v;not null" json:"v"`
	KID        *string `gorm:"column:kid;type:text" json:"kid"`

	Seq int64 `gorm:"column:seq;not null;index:idx_messages_thread_seq,unique,priority:2" json:"seq"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) Payload() EncryptedPayload {
	return EncryptedPayload{
		Ciphertext: m.Ciphertext,
		IV:         m.IV,
		Alg:        m.Alg,
		V:          m.V,
		KID:        m.KID,
	}
}
