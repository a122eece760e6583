package models

import (
	"time"

	"gorm.io/gorm"
)

// Folder groups scanned documents
type Folder struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	Name      string         `json:"name" gorm:"size:100;not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for Folder
func (Folder) TableName() string {
	return "folders"
}

// Document is a multi-page scan. A nil FolderID places it at the root.
type Document struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	FolderID  *uint          `json:"folder_id" gorm:"index"`
	Name      string         `json:"name" gorm:"size:200;not null"`
	Pages     []Page         `json:"pages" gorm:"foreignKey:DocumentID"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for Document
func (Document) TableName() string {
	return "documents"
}

// Page is one captured image of a document. The image itself lives in the page store under ObjectKey.
type Page struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	DocumentID  uint      `json:"document_id" gorm:"not null"`
	Position    int       `json:"position" gorm:"not null"`
	ObjectKey   string    `json:"-" gorm:"size:255;not null"`
	ContentType string    `json:"content_type" gorm:"size:50"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Page
func (Page) TableName() string {
	return "pages"
}

// CreateFolderRequest represents a folder creation or rename request
type CreateFolderRequest struct {
	Name string `json:"name"`
}

// PageUpload is one page image in a document request, base64 encoded in JSON
type PageUpload struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	Name     string       `json:"name"`
	FolderID *uint        `json:"folder_id"`
	Pages    []PageUpload `json:"pages"`
}

// UpdateDocumentRequest renames and/or moves a document. MoveToRoot wins over FolderID.
type UpdateDocumentRequest struct {
	Name       *string `json:"name"`
	FolderID   *uint   `json:"folder_id"`
	MoveToRoot bool    `json:"move_to_root"`
}

// ReorderPagesRequest lists page IDs in their new order
type ReorderPagesRequest struct {
	PageIDs []uint `json:"page_ids"`
}
