package s3store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/modal-agent/mago/providers/ai"
	"github.com/modal-agent/mago/providers/conversation"
)

// fakeObjectAPI is a scripted ObjectAPI stub. GetObject is deliberately
// unusable: the happy-path download is covered against a real endpoint, not
// here, because *minio.Object cannot be constructed outside the client.
type fakeObjectAPI struct {
	putKey    string
	putData   []byte
	putErr    error
	statErr   error
	removeErr error
	removed   []string
	listed    []minio.ObjectInfo
}

func (f *fakeObjectAPI) PutObject(_ context.Context, _, objectName string, reader io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.putKey = objectName
	f.putData = data
	return minio.UploadInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeObjectAPI) GetObject(_ context.Context, _, _ string, _ minio.GetObjectOptions) (*minio.Object, error) {
	return nil, errors.New("fake does not serve object bodies")
}

func (f *fakeObjectAPI) StatObject(_ context.Context, _, _ string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if f.statErr != nil {
		return minio.ObjectInfo{}, f.statErr
	}
	return minio.ObjectInfo{}, nil
}

func (f *fakeObjectAPI) RemoveObject(_ context.Context, _, objectName string, _ minio.RemoveObjectOptions) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, objectName)
	return nil
}

func (f *fakeObjectAPI) ListObjects(_ context.Context, _ string, _ minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	out := make(chan minio.ObjectInfo, len(f.listed))
	for _, info := range f.listed {
		out <- info
	}
	close(out)
	return out
}

func noSuchKey() error {
	return minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404, Message: "The specified key does not exist."}
}

func TestSaveUploadsJSONObject(t *testing.T) {
	fake := &fakeObjectAPI{}
	store := New(fake, "agent-data")
	conv := conversation.New("helper", []ai.Message{ai.TextMessage(ai.RoleUser, "hello")})

	if err := store.Save(context.Background(), "user-1", "helper", "conv-1", conv); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if want := "conversations/user-1/helper/conv-1.json"; fake.putKey != want {
		t.Errorf("expected key %q, got %q", want, fake.putKey)
	}
	var stored conversation.Conversation
	if err := json.Unmarshal(fake.putData, &stored); err != nil {
		t.Fatalf("uploaded payload is not valid JSON: %v", err)
	}
	if stored.AgentName != "helper" || len(stored.ChatHistory) != 1 {
		t.Errorf("unexpected stored record: %+v", stored)
	}
}

func TestSaveWithCustomFolder(t *testing.T) {
	fake := &fakeObjectAPI{}
	store := New(fake, "agent-data", WithFolder("/archive/"))

	if err := store.Save(context.Background(), "u", "a", "c", conversation.New("a", nil)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if want := "archive/u/a/c.json"; fake.putKey != want {
		t.Errorf("expected key %q, got %q", want, fake.putKey)
	}
}

func TestSaveUploadErrorIsIOFailure(t *testing.T) {
	fake := &fakeObjectAPI{putErr: errors.New("connection reset")}
	store := New(fake, "agent-data")

	err := store.Save(context.Background(), "u", "a", "c", conversation.New("a", nil))
	if !conversation.IsIOFailure(err) {
		t.Fatalf("expected IOFailure, got %v", err)
	}
}

func TestLoadMissingIsNotFound(t *testing.T) {
	fake := &fakeObjectAPI{statErr: noSuchKey()}
	store := New(fake, "agent-data")

	_, err := store.Load(context.Background(), "u", "a", "missing")
	if !conversation.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestLoadTransportErrorIsIOFailure(t *testing.T) {
	fake := &fakeObjectAPI{statErr: minio.ErrorResponse{Code: "SlowDown", StatusCode: 503}}
	store := New(fake, "agent-data")

	_, err := store.Load(context.Background(), "u", "a", "c")
	if !conversation.IsIOFailure(err) {
		t.Fatalf("expected IOFailure, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	fake := &fakeObjectAPI{}
	store := New(fake, "agent-data")

	if err := store.Delete(context.Background(), "u", "a", "c"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(fake.removed) != 1 || fake.removed[0] != "conversations/u/a/c.json" {
		t.Errorf("unexpected removals: %v", fake.removed)
	}
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	fake := &fakeObjectAPI{statErr: noSuchKey()}
	store := New(fake, "agent-data")

	err := store.Delete(context.Background(), "u", "a", "missing")
	if !conversation.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if len(fake.removed) != 0 {
		t.Errorf("delete of missing key must not call RemoveObject, removed %v", fake.removed)
	}
}

func TestListSortedByRecency(t *testing.T) {
	newer := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)
	fake := &fakeObjectAPI{
		listed: []minio.ObjectInfo{
			{Key: "conversations/u/a/conv-old.json", LastModified: older, Size: 100},
			{Key: "conversations/u/a/notes.txt", LastModified: newer, Size: 5},
			{Key: "conversations/u/a/conv-new.json", LastModified: newer, Size: 200},
		},
	}
	store := New(fake, "agent-data")

	summaries, err := store.List(context.Background(), "u", "a")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected non-JSON keys skipped, got %d summaries", len(summaries))
	}
	if summaries[0].ConversationID != "conv-new" || summaries[1].ConversationID != "conv-old" {
		t.Errorf("expected most recent first, got %q then %q", summaries[0].ConversationID, summaries[1].ConversationID)
	}
	if summaries[0].SizeBytes != 200 {
		t.Errorf("unexpected size: %d", summaries[0].SizeBytes)
	}
}

func TestListPropagatesListingError(t *testing.T) {
	fake := &fakeObjectAPI{
		listed: []minio.ObjectInfo{{Err: errors.New("access denied")}},
	}
	store := New(fake, "agent-data")

	_, err := store.List(context.Background(), "u", "a")
	if !conversation.IsIOFailure(err) {
		t.Fatalf("expected IOFailure, got %v", err)
	}
}
