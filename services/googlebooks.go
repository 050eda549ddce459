package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/repository"
)

const googleBooksBaseURL = "https://www.googleapis.com/books/v1/volumes"

// GoogleBooksClient fetches volume metadata from the Google Books API.
type GoogleBooksClient struct {
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGoogleBooksClient creates the API client. The key is optional for
// low request volumes.
func NewGoogleBooksClient(apiKey string, logger *zap.Logger) *GoogleBooksClient {
	return &GoogleBooksClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type googleVolume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title               string   `json:"title"`
		Subtitle            string   `json:"subtitle"`
		Authors             []string `json:"authors"`
		Publisher           string   `json:"publisher"`
		PublishedDate       string   `json:"publishedDate"`
		Description         string   `json:"description"`
		PageCount           int      `json:"pageCount"`
		Categories          []string `json:"categories"`
		Language            string   `json:"language"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
		ImageLinks struct {
			Thumbnail      string `json:"thumbnail"`
			SmallThumbnail string `json:"smallThumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

type googleVolumeList struct {
	TotalItems int            `json:"totalItems"`
	Items      []googleVolume `json:"items"`
}

// Search queries the volumes endpoint with a free-text query.
func (c *GoogleBooksClient) Search(ctx context.Context, query string, maxResults int) ([]googleVolume, error) {
	if maxResults < 1 || maxResults > 40 {
		maxResults = 20
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleBooksBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google books request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books returned status %d", resp.StatusCode)
	}

	var list googleVolumeList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("google books response decode failed: %w", err)
	}
	return list.Items, nil
}

// ImportResult summarizes one catalog import run.
type ImportResult struct {
	Created int
	Skipped int
}

// ImportService pulls Google Books volumes into the catalog. Volumes
// already imported (matched by Google Books id) are skipped, so a rerun
// of the same query is idempotent.
type ImportService struct {
	client *GoogleBooksClient
	books  repository.BookRepository
	logger *zap.Logger
}

// NewImportService creates the catalog import service.
func NewImportService(client *GoogleBooksClient, books repository.BookRepository, logger *zap.Logger) *ImportService {
	return &ImportService{client: client, books: books, logger: logger}
}

// ImportQuery searches Google Books and creates catalog entries for new
// volumes. Imported books start at the given price with zero stock and
// off sale, pending staff review.
func (s *ImportService) ImportQuery(ctx context.Context, query string, maxResults int, defaultPrice int64) (*ImportResult, error) {
	volumes, err := s.client.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, vol := range volumes {
		if vol.VolumeInfo.Title == "" {
			result.Skipped++
			continue
		}

		_, err := s.books.FindByGoogleBooksID(ctx, vol.ID)
		if err == nil {
			result.Skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return result, err
		}

		if err := s.createFromVolume(ctx, vol, defaultPrice); err != nil {
			s.logger.Warn("Failed to import volume",
				zap.String("volume_id", vol.ID),
				zap.String("title", vol.VolumeInfo.Title),
				zap.Error(err),
			)
			result.Skipped++
			continue
		}
		result.Created++
	}

	s.logger.Info("Catalog import finished",
		zap.String("query", query),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *ImportService) createFromVolume(ctx context.Context, vol googleVolume, defaultPrice int64) error {
	info := vol.VolumeInfo
	googleID := vol.ID

	book := &models.Book{
		GoogleBooksID: &googleID,
		Title:         truncate(info.Title, 300),
		Subtitle:      truncate(info.Subtitle, 300),
		Publisher:     truncate(info.Publisher, 200),
		PublishedDate: truncate(info.PublishedDate, 20),
		Description:   info.Description,
		PageCount:     info.PageCount,
		Language:      orDefault(info.Language, "en"),
		Thumbnail:     upgradeImageURL(info.ImageLinks.Thumbnail),
		Price:         defaultPrice,
		IsAvailable:   false,
	}
	if len(info.Categories) > 0 {
		book.MainCategory = truncate(info.Categories[0], 200)
	}

	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_10":
			book.ISBN10 = id.Identifier
		case "ISBN_13":
			book.ISBN13 = id.Identifier
		}
	}

	if err := s.books.Create(ctx, book); err != nil {
		return err
	}

	authors := make([]models.Author, 0, len(info.Authors))
	for _, name := range info.Authors {
		author, err := s.books.FindOrCreateAuthor(ctx, strings.TrimSpace(name), nil)
		if err != nil {
			return err
		}
		authors = append(authors, *author)
	}
	if err := s.books.ReplaceAuthors(ctx, book, authors); err != nil {
		return err
	}

	categories := make([]models.Category, 0, len(info.Categories))
	for _, name := range info.Categories {
		category, err := s.books.FindOrCreateCategory(ctx, name, Slugify(name))
		if err != nil {
			return err
		}
		categories = append(categories, *category)
	}
	return s.books.ReplaceCategories(ctx, book, categories)
}

// upgradeImageURL forces https on Google Books image links.
func upgradeImageURL(raw string) string {
	return strings.Replace(raw, "http://", "https://", 1)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
