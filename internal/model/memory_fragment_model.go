package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// MemoryFragment is one stored unit of long-term conversation memory:
// a generated answer, a user/assistant exchange pair, or a formatted
// appointment record.
type MemoryFragment struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CallerId       string          `gorm:"type:varchar(128);not null;index"`
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 / nomic-embed-text are 768-dim
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (MemoryFragment) TableName() string {
	return "memory_fragments"
}
