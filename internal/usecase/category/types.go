package category

import (
	"time"

	"github.com/Glenferdinza/sporton/internal/storage"
)

type Category struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateInput struct {
	Name        string
	Description string
	Image       *storage.Upload
}

type UpdateInput struct {
	Name        *string
	Description *string
	Image       *storage.Upload
}

// Fields is what the store persists; the image is already a public path.
type Fields struct {
	Name        *string
	Description *string
	ImageURL    *string
}
