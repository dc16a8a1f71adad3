package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Note struct {
	ID         uint      `gorm:"primaryKey" bson:"_id" json:"id"`
	Title      string    `gorm:"size:255;not null" bson:"title" json:"title"`
	Content    string    `gorm:"type:text;not null" bson:"content" json:"content"`
	Tags       Tags      `gorm:"not null" bson:"tags" json:"tags"`
	Attachment string    `bson:"attachment,omitempty" json:"attachment,omitempty"`
	IsPinned   bool      `gorm:"column:is_pinned;not null" bson:"is_pinned" json:"isPinned"`
	IsFavorite bool      `gorm:"column:is_favorite;not null" bson:"is_favorite" json:"isFavorite"`
	UserID     uint      `gorm:"index;not null" bson:"user_id" json:"userId"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false" bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false;index" bson:"updated_at" json:"updatedAt"`
}

// Tags is stored as a JSON array in relational databases.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Tags) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported tags column type %T", value)
	}
	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	*t = tags
	return nil
}

// GormDataType keeps AutoMigrate portable; postgres schema comes from migrations.
func (Tags) GormDataType() string {
	return "text"
}
