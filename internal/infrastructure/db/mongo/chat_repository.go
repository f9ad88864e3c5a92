package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/edgechat/backend/internal/core/domain"
)

const chatCollection = "conversations"

// ChatRepository stores one document per conversation with the message
// history embedded.
type ChatRepository struct {
	coll *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{coll: db.Collection(chatCollection)}
}

type conversationDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    int64              `bson:"user_id"`
	Messages  []messageDoc       `bson:"messages"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type messageDoc struct {
	Role    string `bson:"role"`
	Content string `bson:"content"`
}

func (r *ChatRepository) Create(ctx context.Context, userID int64) (string, error) {
	now := time.Now().UTC()
	doc := conversationDoc{
		UserID:    userID,
		Messages:  []messageDoc{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert conversation: %w", err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *ChatRepository) Find(ctx context.Context, id string, userID int64) (*domain.Conversation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id is indistinguishable from a missing one.
		return nil, domain.ErrConversationNotFound
	}

	var doc conversationDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return toConversation(doc), nil
}

func (r *ChatRepository) List(ctx context.Context, userID int64, limit, skip int) ([]*domain.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []conversationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}

	out := make([]*domain.Conversation, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toConversation(doc))
	}
	return out, nil
}

// AppendMessages pushes the new turns and bumps updated_at in one atomic
// update, so a concurrent reader never sees a half-applied exchange.
func (r *ChatRepository) AppendMessages(ctx context.Context, id string, userID int64, messages []domain.Message) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrConversationNotFound
	}

	docs := make([]messageDoc, 0, len(messages))
	for _, m := range messages {
		docs = append(docs, messageDoc{Role: m.Role, Content: m.Content})
	}

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": userID},
		bson.M{
			"$push": bson.M{"messages": bson.M{"$each": docs}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("append messages: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func (r *ChatRepository) Delete(ctx context.Context, id string, userID int64) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrConversationNotFound
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

func toConversation(doc conversationDoc) *domain.Conversation {
	messages := make([]domain.Message, 0, len(doc.Messages))
	for _, m := range doc.Messages {
		messages = append(messages, domain.Message{Role: m.Role, Content: m.Content})
	}
	return &domain.Conversation{
		ID:        doc.ID.Hex(),
		UserID:    doc.UserID,
		Messages:  messages,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
