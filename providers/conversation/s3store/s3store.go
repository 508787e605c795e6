package s3store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/modal-agent/mago/providers/conversation"
)

// defaultFolder is the key prefix used when no custom folder is provided.
const defaultFolder = "conversations"

// ObjectAPI abstracts the minio client methods needed by Store.
// *minio.Client satisfies this interface.
type ObjectAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// Store persists conversations in an S3-compatible object store, one JSON
// object per conversation at {folder}/{userID}/{agentName}/{conversationID}.json.
type Store struct {
	client ObjectAPI
	bucket string
	folder string
}

// Compile-time check: Store must implement conversation.Store.
var _ conversation.Store = (*Store)(nil)

// Option configures optional Store behavior.
type Option func(*Store)

// WithFolder overrides the default key prefix ("conversations").
func WithFolder(folder string) Option {
	return func(s *Store) {
		s.folder = strings.Trim(folder, "/")
	}
}

// New creates an object-storage-backed store. The client is typically a
// *minio.Client configured for S3, MinIO, or any S3-compatible endpoint; the
// bucket must already exist.
func New(client ObjectAPI, bucket string, opts ...Option) *Store {
	store := &Store{
		client: client,
		bucket: bucket,
		folder: defaultFolder,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Save uploads the conversation, overwriting any previous object.
func (s *Store) Save(ctx context.Context, userID, agentName, conversationID string, conv *conversation.Conversation) error {
	key := s.objectKey(userID, agentName, conversationID)
	if conv == nil {
		return conversation.NewIOFailure(key, errors.New("nil conversation"))
	}

	conv.Touch()
	data, err := json.Marshal(conv)
	if err != nil {
		return conversation.NewIOFailure(key, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return conversation.NewIOFailure(key, err)
	}
	return nil
}

// Load downloads and decodes a conversation object.
func (s *Store) Load(ctx context.Context, userID, agentName, conversationID string) (*conversation.Conversation, error) {
	key := s.objectKey(userID, agentName, conversationID)

	// GetObject is lazy: missing keys only surface on first read. Stat first
	// so the not-found case is classified before any transfer starts.
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return nil, mapError(key, err)
	}

	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, mapError(key, err)
	}

	var conv conversation.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, conversation.NewIOFailure(key, fmt.Errorf("corrupt record: %w", err))
	}
	return &conv, nil
}

// Delete removes a conversation object. The stat-first check gives delete
// the same not-found semantics as the other backends; S3's own delete is
// silently idempotent.
func (s *Store) Delete(ctx context.Context, userID, agentName, conversationID string) error {
	key := s.objectKey(userID, agentName, conversationID)

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return mapError(key, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return mapError(key, err)
	}
	return nil
}

// List enumerates the conversations stored under the (userID, agentName)
// prefix, most recently updated first.
func (s *Store) List(ctx context.Context, userID, agentName string) ([]conversation.Summary, error) {
	prefix := s.objectKey(userID, agentName, "")

	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	summaries := []conversation.Summary{}
	for object := range objects {
		if object.Err != nil {
			return nil, conversation.NewIOFailure(prefix, object.Err)
		}
		if !strings.HasSuffix(object.Key, ".json") {
			continue
		}
		name := strings.TrimSuffix(object.Key[strings.LastIndex(object.Key, "/")+1:], ".json")
		summaries = append(summaries, conversation.Summary{
			ConversationID: name,
			AgentName:      agentName,
			UpdatedAt:      object.LastModified,
			SizeBytes:      object.Size,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// objectKey builds the S3 key. A trailing empty conversation id yields the
// listing prefix for the (user, agent) pair.
func (s *Store) objectKey(userID, agentName, conversationID string) string {
	key := s.folder + "/" + userID + "/" + agentName + "/"
	if conversationID != "" {
		key += conversationID + ".json"
	}
	return key
}

// mapError classifies a minio error: missing keys become NotFound,
// everything else is an IO failure.
func mapError(key string, err error) error {
	response := minio.ToErrorResponse(err)
	if response.Code == "NoSuchKey" || response.StatusCode == 404 {
		return conversation.NewNotFound(key)
	}
	return conversation.NewIOFailure(key, err)
}
