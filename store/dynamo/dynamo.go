package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/zlutov/notepad/models"
)

const userIdIndex = "GSI_UserId"

type DynamoNotepadStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoNotepadStore(ctx context.Context, devMode bool, dynamodbEndpoint string, tableName string) (*DynamoNotepadStore, error) {
	client, err := newDynamoDBClient(context.Background(), devMode, dynamodbEndpoint)
	if err != nil {
		return nil, err
	}

	tables, err := getTables(client, ctx)
	if err != nil {
		return nil, err
	}

	foundTable := false
	for _, table := range tables {
		if table == tableName {
			foundTable = true
			break
		}
	}
	if !foundTable {
		return nil, fmt.Errorf("given table name '%s' not found in dynamodb", tableName)
	}

	return &DynamoNotepadStore{client: client, tableName: tableName}, nil
}

func (dynamoStore *DynamoNotepadStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	du := userToDynamo(user)
	if err := putIfAbsent(dynamoStore, ctx, du); err != nil {
		return models.User{}, err
	}

	return userFromDynamo(du), nil
}

func (dynamoStore *DynamoNotepadStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	du, err := getItem[dynamoUser](dynamoStore, ctx, "USER#"+email, "PROFILE", false)
	if err != nil {
		return models.User{}, err
	}

	return userFromDynamo(du), nil
}

func (dynamoStore *DynamoNotepadStore) GetUserById(ctx context.Context, userId string) (models.User, error) {
	du, err := queryOneByGSI[dynamoUser](dynamoStore, ctx, userIdIndex, "Id", userId)
	if err != nil {
		return models.User{}, err
	}

	return userFromDynamo(du), nil
}

func (dynamoStore *DynamoNotepadStore) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	dn := noteToDynamo(note)
	if err := putIfAbsent(dynamoStore, ctx, dn); err != nil {
		return models.Note{}, err
	}

	return noteFromDynamo(dn), nil
}

// The owner id is part of every note's partition key, so a foreign noteId
// can never resolve to somebody else's note; it simply does not exist in
// the caller's partition.
func (dynamoStore *DynamoNotepadStore) UpdateNote(ctx context.Context, note models.Note, fields []string) (models.Note, error) {
	dn := noteToDynamo(note)
	updated, err := updateItem(dynamoStore, ctx, dn, fields)
	if err != nil {
		return models.Note{}, err
	}

	return noteFromDynamo(updated), nil
}

func (dynamoStore *DynamoNotepadStore) DeleteNote(ctx context.Context, userId string, noteId string) error {
	return deleteItem(dynamoStore, ctx, "NOTE#"+userId, noteId)
}

func (dynamoStore *DynamoNotepadStore) ListNotes(ctx context.Context, userId string) ([]models.Note, error) {
	dynamoNotes, err := queryAllByPK[dynamoNote](dynamoStore, ctx, "NOTE#"+userId)
	if err != nil {
		return nil, err
	}

	notes := make([]models.Note, 0, len(dynamoNotes))
	for _, dn := range dynamoNotes {
		notes = append(notes, noteFromDynamo(dn))
	}

	return notes, nil
}
