// Package model 定义数据库模型.
package model

import "time"

// Upload 一个附属于帖子的二进制附件记录.
// Size 与 Extension 创建后不再修改，状态只能通过账本的迁移检查修改.
type Upload struct {
	ID           int64        `gorm:"primaryKey;autoIncrement"                  json:"id"`
	PostID       int64        `gorm:"index;not null"                            json:"post_id"`
	Extension    string       `gorm:"type:varchar(32);not null;default:''"      json:"extension,omitempty"`
	Size         int64        `gorm:"not null"                                  json:"size"`
	Status       UploadStatus `gorm:"type:varchar(16);index;not null"           json:"status"`
	Checksum     string       `gorm:"type:varchar(32);not null;default:''"      json:"checksum,omitempty"`
	ClaimID      *string      `gorm:"type:varchar(36);index"                    json:"-"`
	ClaimedAt    *time.Time   `json:"-"`
	CreationDate time.Time    `gorm:"index;not null"                            json:"creation_date"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TableName 指定表名.
func (Upload) TableName() string { return "uploads" }

// Post 上传记录所属的帖子，这里只保留鉴权所需的作者字段.
type Post struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"             json:"id"`
	AuthorUsername string    `gorm:"type:varchar(255);index;not null"     json:"author_username"`
	Title          string    `gorm:"type:varchar(255);not null;default:''" json:"title"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName 指定表名.
func (Post) TableName() string { return "posts" }

// Models 返回需要迁移的全部模型.
func Models() []any {
	return []any{&Post{}, &Upload{}}
}
