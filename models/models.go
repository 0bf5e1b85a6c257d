package models

type User struct {
	Id           string `json:"id"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Created      int64  `json:"createdAt"`
}

type Note struct {
	Id       string   `json:"id"`
	UserId   string   `json:"userId"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	IsPinned bool     `json:"isPinned"`
	Created  int64    `json:"createdAt"`
	Updated  int64    `json:"updatedAt"`
}

// NotePatch carries a partial note update. A nil field leaves the stored
// value untouched; a non-nil field is applied even when it points at an
// empty string or slice.
type NotePatch struct {
	Title    *string
	Content  *string
	Tags     *[]string
	IsPinned *bool
}

func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil && p.IsPinned == nil
}
