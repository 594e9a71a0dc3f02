package services

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-api/models"
)

var pageSlugs = map[string]string{
	models.PageAbout:   "About us",
	models.PageContact: "Contact",
}

type ContactInput struct {
	Name    string
	Phone   string
	Email   string
	Message string
}

// ContentService serves the static pages and the contact form.
type ContentService struct {
	db *gorm.DB
}

func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db}
}

// GetPage returns the page for slug. A page nobody has written yet comes back
// empty with its default title.
func (s *ContentService) GetPage(ctx context.Context, slug string) (*models.Page, error) {
	title, ok := pageSlugs[slug]
	if !ok {
		return nil, NotFound("page")
	}
	var page models.Page
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&page).Error
	if isNotFound(err) {
		return &models.Page{Slug: slug, Title: title}, nil
	}
	if err != nil {
		return nil, wrap("get page", err)
	}
	return &page, nil
}

func (s *ContentService) UpsertPage(ctx context.Context, actorID uint, slug, title, body string) (*models.Page, error) {
	if _, ok := pageSlugs[slug]; !ok {
		return nil, NotFound("page")
	}
	if strings.TrimSpace(title) == "" {
		return nil, Validation("title", "title is required")
	}
	page := &models.Page{Slug: slug, Title: strings.TrimSpace(title), Body: body, UpdatedBy: actorID}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "body", "updated_by", "updated_at"}),
	}).Create(page).Error
	if err != nil {
		return nil, wrap("save page", err)
	}
	return s.GetPage(ctx, slug)
}

func (s *ContentService) SubmitContactMessage(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, Validation("name", "name is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, Validation("message", "message is required")
	}
	if in.Phone != "" && !ValidPhone(in.Phone) {
		return nil, Validation("phone", "phone must be exactly 10 digits")
	}
	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Phone:   in.Phone,
		Email:   strings.TrimSpace(in.Email),
		Message: strings.TrimSpace(in.Message),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, wrap("save contact message", err)
	}
	return msg, nil
}

func (s *ContentService) ListContactMessages(ctx context.Context) ([]models.ContactMessage, error) {
	var msgs []models.ContactMessage
	if err := s.db.WithContext(ctx).Order("created_at desc, id desc").Find(&msgs).Error; err != nil {
		return nil, wrap("list contact messages", err)
	}
	return msgs, nil
}
