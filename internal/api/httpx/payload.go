package httpx

import "github.com/5w1tchy/books-crud/internal/models"

// BookInfo is the payload of every response that returns books.
type BookInfo struct {
	Count int                     `json:"no. of books"`
	Books []models.Representation `json:"books"`
}

func NewBookInfo(books ...models.Book) BookInfo {
	info := BookInfo{Count: len(books), Books: make([]models.Representation, 0, len(books))}
	for i := range books {
		info.Books = append(info.Books, books[i].Representation())
	}
	return info
}
