package blog

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post is a blog post. Listing pages carry full posts; the content column is
// small enough that a summary projection is not worth a second query shape.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p" msgpack:"-"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id" msgpack:"id"`
	Title     string    `bun:"title,notnull" json:"title" msgpack:"title"`
	Content   string    `bun:"content,notnull" json:"content" msgpack:"content"`
	Author    string    `bun:"author,notnull" json:"author" msgpack:"author"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at" msgpack:"updated_at"`
}

// Validate checks the post fields before a write.
func (p Post) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Content, validation.Required, validation.Length(1, 50000)),
		validation.Field(&p.Author, validation.Required, validation.Length(1, 64)),
	)
}
