package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"back_scan/internal/models"
	"back_scan/internal/pagestore"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidName      = errors.New("name must be 1 to 100 characters")
	ErrInvalidPage      = errors.New("page must be a non-empty image")
	ErrInvalidPageOrder = errors.New("page order must list every page of the document exactly once")
)

const (
	maxNameLength = 100
	maxPageBytes  = 10 << 20
)

// DocumentService organises scanned documents into folders and manages their pages
type DocumentService struct {
	db    *gorm.DB
	pages pagestore.Store
}

func NewDocumentService(db *gorm.DB, pages pagestore.Store) *DocumentService {
	return &DocumentService{db: db, pages: pages}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// CreateFolder creates a folder owned by userID
func (ds *DocumentService) CreateFolder(userID uint, name string) (*models.Folder, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	folder := models.Folder{UserID: userID, Name: name}
	if err := ds.db.Create(&folder).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

// ListFolders returns the user's folders by name
func (ds *DocumentService) ListFolders(userID uint) ([]models.Folder, error) {
	var folders []models.Folder
	err := ds.db.Where("user_id = ?", userID).Order("name").Find(&folders).Error
	return folders, err
}

func (ds *DocumentService) RenameFolder(userID, folderID uint, name string) (*models.Folder, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	var folder models.Folder
	if err := ds.db.Where("id = ? AND user_id = ?", folderID, userID).First(&folder).Error; err != nil {
		return nil, notFound(err)
	}
	if err := ds.db.Model(&folder).Update("name", name).Error; err != nil {
		return nil, err
	}
	return &folder, nil
}

// DeleteFolder deletes a folder and moves its documents to the root
func (ds *DocumentService) DeleteFolder(userID, folderID uint) error {
	return ds.db.Transaction(func(tx *gorm.DB) error {
		var folder models.Folder
		if err := tx.Where("id = ? AND user_id = ?", folderID, userID).First(&folder).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.Document{}).
			Where("user_id = ? AND folder_id = ?", userID, folderID).
			Update("folder_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&folder).Error
	})
}

// DocumentFilter selects documents by folder. A nil FolderID with RootOnly
// selects documents outside any folder; with neither set every document matches.
type DocumentFilter struct {
	FolderID *uint
	RootOnly bool
}

func (ds *DocumentService) ListDocuments(userID uint, filter DocumentFilter) ([]models.Document, error) {
	q := ds.db.Where("user_id = ?", userID)
	switch {
	case filter.FolderID != nil:
		q = q.Where("folder_id = ?", *filter.FolderID)
	case filter.RootOnly:
		q = q.Where("folder_id IS NULL")
	}
	var docs []models.Document
	err := q.Preload("Pages", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Order("updated_at DESC").Find(&docs).Error
	return docs, err
}

func (ds *DocumentService) GetDocument(userID, documentID uint) (*models.Document, error) {
	var doc models.Document
	err := ds.db.Where("id = ? AND user_id = ?", documentID, userID).
		Preload("Pages", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).First(&doc).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

func (ds *DocumentService) checkFolder(tx *gorm.DB, userID uint, folderID *uint) error {
	if folderID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Folder{}).Where("id = ? AND user_id = ?", *folderID, userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("folder %d: %w", *folderID, ErrNotFound)
	}
	return nil
}

// CreateDocument stores the page images and creates the document with pages in upload order
func (ds *DocumentService) CreateDocument(ctx context.Context, userID uint, req models.CreateDocumentRequest) (*models.Document, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := ds.checkFolder(ds.db, userID, req.FolderID); err != nil {
		return nil, err
	}

	doc := models.Document{UserID: userID, FolderID: req.FolderID, Name: name}
	err = ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}
		pages, err := ds.storePages(ctx, tx, userID, doc.ID, 0, req.Pages)
		doc.Pages = pages
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("DEBUG: Created document %d with %d pages for user %d", doc.ID, len(doc.Pages), userID)
	return &doc, nil
}

// storePages writes images to the page store and their rows through tx. On
// failure the images already written are removed again.
func (ds *DocumentService) storePages(ctx context.Context, tx *gorm.DB, userID, documentID uint, firstPosition int, uploads []models.PageUpload) ([]models.Page, error) {
	pages := make([]models.Page, 0, len(uploads))
	var written []string
	rollback := func() {
		for _, key := range written {
			if err := ds.pages.Delete(context.Background(), key); err != nil {
				log.Printf("WARNING: Failed to remove orphaned page %s: %v", key, err)
			}
		}
	}

	for i, upload := range uploads {
		contentType, err := pageContentType(upload)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		key := pagestore.ObjectKey(userID, documentID, uuid.NewString())
		if err := ds.pages.Put(ctx, key, contentType, upload.Data); err != nil {
			rollback()
			return nil, err
		}
		written = append(written, key)

		page := models.Page{
			DocumentID:  documentID,
			Position:    firstPosition + i,
			ObjectKey:   key,
			ContentType: contentType,
			Size:        int64(len(upload.Data)),
		}
		if err := tx.Create(&page).Error; err != nil {
			rollback()
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func pageContentType(upload models.PageUpload) (string, error) {
	if len(upload.Data) == 0 || len(upload.Data) > maxPageBytes {
		return "", ErrInvalidPage
	}
	contentType := upload.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(upload.Data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrInvalidPage
	}
	return contentType, nil
}

// UpdateDocument renames and/or moves a document
func (ds *DocumentService) UpdateDocument(userID, documentID uint, req models.UpdateDocumentRequest) (*models.Document, error) {
	updates := map[string]any{}
	if req.Name != nil {
		name, err := cleanName(*req.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	switch {
	case req.MoveToRoot:
		updates["folder_id"] = nil
	case req.FolderID != nil:
		if err := ds.checkFolder(ds.db, userID, req.FolderID); err != nil {
			return nil, err
		}
		updates["folder_id"] = *req.FolderID
	}

	doc, err := ds.GetDocument(userID, documentID)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := ds.db.Model(doc).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return ds.GetDocument(userID, documentID)
}

// DeleteDocument deletes a document with its pages and their images
func (ds *DocumentService) DeleteDocument(ctx context.Context, userID, documentID uint) error {
	doc, err := ds.GetDocument(userID, documentID)
	if err != nil {
		return err
	}
	err = ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.Page{}).Error; err != nil {
			return err
		}
		return tx.Delete(doc).Error
	})
	if err != nil {
		return err
	}
	ds.removeImages(ctx, doc.Pages)
	return nil
}

func (ds *DocumentService) removeImages(ctx context.Context, pages []models.Page) {
	for _, page := range pages {
		if err := ds.pages.Delete(ctx, page.ObjectKey); err != nil {
			log.Printf("WARNING: Failed to delete page image %s: %v", page.ObjectKey, err)
		}
	}
}

// AddPages appends pages to the end of a document
func (ds *DocumentService) AddPages(ctx context.Context, userID, documentID uint, uploads []models.PageUpload) (*models.Document, error) {
	if len(uploads) == 0 {
		return nil, ErrInvalidPage
	}
	doc, err := ds.GetDocument(userID, documentID)
	if err != nil {
		return nil, err
	}
	err = ds.db.Transaction(func(tx *gorm.DB) error {
		if _, err := ds.storePages(ctx, tx, userID, doc.ID, len(doc.Pages), uploads); err != nil {
			return err
		}
		return tx.Model(doc).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return ds.GetDocument(userID, documentID)
}

// RemovePage deletes a page and closes the gap in positions
func (ds *DocumentService) RemovePage(ctx context.Context, userID, documentID, pageID uint) (*models.Document, error) {
	doc, err := ds.GetDocument(userID, documentID)
	if err != nil {
		return nil, err
	}
	var removed *models.Page
	remaining := make([]models.Page, 0, len(doc.Pages))
	for i := range doc.Pages {
		if doc.Pages[i].ID == pageID {
			removed = &doc.Pages[i]
			continue
		}
		remaining = append(remaining, doc.Pages[i])
	}
	if removed == nil {
		return nil, fmt.Errorf("page %d: %w", pageID, ErrNotFound)
	}

	err = ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Page{}, removed.ID).Error; err != nil {
			return err
		}
		return renumber(tx, remaining)
	})
	if err != nil {
		return nil, err
	}
	ds.removeImages(ctx, []models.Page{*removed})
	return ds.GetDocument(userID, documentID)
}

// ReorderPages sets page positions to the order of pageIDs, which must be a
// permutation of the document's pages
func (ds *DocumentService) ReorderPages(userID, documentID uint, pageIDs []uint) (*models.Document, error) {
	doc, err := ds.GetDocument(userID, documentID)
	if err != nil {
		return nil, err
	}
	if len(pageIDs) != len(doc.Pages) {
		return nil, ErrInvalidPageOrder
	}
	byID := make(map[uint]models.Page, len(doc.Pages))
	for _, page := range doc.Pages {
		byID[page.ID] = page
	}
	ordered := make([]models.Page, 0, len(pageIDs))
	for _, id := range pageIDs {
		page, ok := byID[id]
		if !ok {
			return nil, ErrInvalidPageOrder
		}
		delete(byID, id)
		ordered = append(ordered, page)
	}

	if err := ds.db.Transaction(func(tx *gorm.DB) error { return renumber(tx, ordered) }); err != nil {
		return nil, err
	}
	return ds.GetDocument(userID, documentID)
}

// renumber assigns positions 0..n-1 in slice order
func renumber(tx *gorm.DB, pages []models.Page) error {
	for i, page := range pages {
		if page.Position == i {
			continue
		}
		if err := tx.Model(&models.Page{}).Where("id = ?", page.ID).Update("position", i).Error; err != nil {
			return err
		}
	}
	return nil
}

// PageImage returns the stored image of a page
func (ds *DocumentService) PageImage(ctx context.Context, userID, documentID, pageID uint) ([]byte, string, error) {
	doc, err := ds.GetDocument(userID, documentID)
	if err != nil {
		return nil, "", err
	}
	for _, page := range doc.Pages {
		if page.ID != pageID {
			continue
		}
		data, err := ds.pages.Get(ctx, page.ObjectKey)
		if errors.Is(err, pagestore.ErrNotFound) {
			return nil, "", fmt.Errorf("page image %d: %w", pageID, ErrNotFound)
		}
		if err != nil {
			return nil, "", err
		}
		return data, page.ContentType, nil
	}
	return nil, "", fmt.Errorf("page %d: %w", pageID, ErrNotFound)
}
