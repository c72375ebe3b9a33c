package entities

import "time"

// Author is a catalog author. Dates are stored as YYYY-MM-DD strings;
// DeathDate is empty for living authors.
type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:256" json:"name"`
	BirthDate string    `gorm:"size:10" json:"birth_date,omitempty"`
	DeathDate string    `gorm:"size:10" json:"death_date,omitempty"`
	Books     []Book    `gorm:"foreignKey:AuthorID" json:"books,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Book is a catalog entry. Year is 0 when the publication year is unknown,
// which makes the book a candidate for metadata enrichment.
type Book struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"index;size:512" json:"title"`
	ISBN      string    `gorm:"index;size:20" json:"isbn,omitempty"`
	Year      int       `json:"year,omitempty"`
	CoverURL  string    `gorm:"size:2048" json:"cover_url,omitempty"`
	AuthorID  uint      `gorm:"index" json:"author_id"`
	Author    Author    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Author) TableName() string {
	return "authors"
}

func (Book) TableName() string {
	return "books"
}
