package dynamo

import (
	"github.com/zlutov/notepad/models"
)

// Single-table layout:
//   USER#<email> / PROFILE      user profile, email uniqueness via the PK
//   NOTE#<userId> / <noteId>    one item per note, partitioned by owner
// GSI_UserId projects user profiles by Id so tokens (which carry the user
// id, not the email) can be resolved back to a profile.

type dynamoUser struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	Id           string `dynamodbav:"Id"`
	FullName     string `dynamodbav:"FullName"`
	Email        string `dynamodbav:"Email"`
	PasswordHash string `dynamodbav:"PasswordHash"`
	Created      int64  `dynamodbav:"Created"`
}

// Map domain User -> Dynamo
func userToDynamo(u models.User) dynamoUser {
	return dynamoUser{
		PK:           "USER#" + u.Email,
		SK:           "PROFILE",
		Id:           u.Id,
		FullName:     u.FullName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Created:      u.Created,
	}
}

// Map Dynamo -> domain User
func userFromDynamo(du dynamoUser) models.User {
	return models.User{
		Id:           du.Id,
		FullName:     du.FullName,
		Email:        du.Email,
		PasswordHash: du.PasswordHash,
		Created:      du.Created,
	}
}

type dynamoNote struct {
	PK       string   `dynamodbav:"PK"`
	SK       string   `dynamodbav:"SK"`
	UserId   string   `dynamodbav:"UserId"`
	Title    string   `dynamodbav:"Title"`
	Content  string   `dynamodbav:"Content"`
	Tags     []string `dynamodbav:"Tags"`
	IsPinned bool     `dynamodbav:"IsPinned"`
	Created  int64    `dynamodbav:"Created"`
	Updated  int64    `dynamodbav:"Updated"`
}

// Map domain Note -> Dynamo
func noteToDynamo(n models.Note) dynamoNote {
	return dynamoNote{
		PK:       "NOTE#" + n.UserId,
		SK:       n.Id,
		UserId:   n.UserId,
		Title:    n.Title,
		Content:  n.Content,
		Tags:     n.Tags,
		IsPinned: n.IsPinned,
		Created:  n.Created,
		Updated:  n.Updated,
	}
}

// Map Dynamo -> domain Note
func noteFromDynamo(dn dynamoNote) models.Note {
	tags := dn.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Note{
		Id:       dn.SK,
		UserId:   dn.UserId,
		Title:    dn.Title,
		Content:  dn.Content,
		Tags:     tags,
		IsPinned: dn.IsPinned,
		Created:  dn.Created,
		Updated:  dn.Updated,
	}
}
