package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Author of one or more books in the catalog.
type Author struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(200);not null" json:"name"`
	Biography     string    `gorm:"type:text" json:"biography,omitempty"`
	Photo         string    `gorm:"type:varchar(1024)" json:"photo,omitempty"`
	GoogleBooksID *string   `gorm:"type:varchar(100);uniqueIndex" json:"google_books_id,omitempty"`
	IsFeatured    bool      `gorm:"default:false" json:"is_featured"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Category classifies books by subject.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Book is a catalog entry. Prices are stored in minor currency units
// (pence) so order totals can be pushed to the payment gateway without
// floating point conversion. Books are never hard-deleted once referenced
// by historical order items; IsAvailable=false takes them off sale.
type Book struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GoogleBooksID *string    `gorm:"type:varchar(100);uniqueIndex" json:"google_books_id,omitempty"`
	ISBN10        string     `gorm:"type:varchar(10)" json:"isbn_10,omitempty"`
	ISBN13        string     `gorm:"type:varchar(13);index" json:"isbn_13,omitempty"`
	Title         string     `gorm:"type:varchar(300);not null;index" json:"title"`
	Subtitle      string     `gorm:"type:varchar(300)" json:"subtitle,omitempty"`
	Authors       []Author   `gorm:"many2many:book_authors" json:"authors,omitempty"`
	Publisher     string     `gorm:"type:varchar(200)" json:"publisher,omitempty"`
	PublishedDate string     `gorm:"type:varchar(20)" json:"published_date,omitempty"`
	Description   string     `gorm:"type:text" json:"description,omitempty"`
	PageCount     int        `json:"page_count,omitempty"`
	Language      string     `gorm:"type:varchar(10);default:'en'" json:"language"`
	Thumbnail     string     `gorm:"type:varchar(1024)" json:"thumbnail,omitempty"`
	CoverImage    string     `gorm:"type:varchar(1024)" json:"cover_image,omitempty"`
	Categories    []Category `gorm:"many2many:book_categories" json:"categories,omitempty"`
	MainCategory  string     `gorm:"type:varchar(200)" json:"main_category,omitempty"`

	Price         int64 `gorm:"not null;check:price >= 0" json:"price"`
	StockQuantity int   `gorm:"not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"`
	IsAvailable   bool  `gorm:"default:true;index" json:"is_available"`
	IsFeatured    bool  `gorm:"default:false;index" json:"is_featured"`

	AverageRating float64 `gorm:"type:numeric(3,2);default:0" json:"average_rating"`
	RatingsCount  int     `gorm:"default:0" json:"ratings_count"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsInStock reports whether the book can currently be purchased.
func (b *Book) IsInStock() bool {
	return b.StockQuantity > 0 && b.IsAvailable
}

// AuthorsList returns a comma-separated list of author names, the form
// snapshotted onto order items.
func (b *Book) AuthorsList() string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// ISBN returns the preferred ISBN for display and snapshots.
func (b *Book) ISBN() string {
	if b.ISBN13 != "" {
		return b.ISBN13
	}
	return b.ISBN10
}

// Review is a rating plus free-text comment, one per (book, user) pair.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_book_user" json:"book_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_book_user" json:"user_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Title     string    `gorm:"type:varchar(200);not null" json:"title"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ContactMessage stores a contact-form submission for staff review.
type ContactMessage struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName   string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName    string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Email       string    `gorm:"type:varchar(254);not null" json:"email"`
	Subject     string    `gorm:"type:varchar(200);not null" json:"subject"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	IsRead      bool      `gorm:"default:false" json:"is_read"`
	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`
}
