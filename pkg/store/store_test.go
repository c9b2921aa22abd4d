package store

import (
	"context"
	"testing"

	"github.com/gudnuf/cln-nwc/pkg/node"
)

// fakeDataStore is a minimal in-memory stand-in for the node's
// datastore, enough to exercise must-create/must-replace CAS
// semantics without a live CLN RPC connection.
type fakeDataStore struct {
	records map[string]string
}

func newFakeDataStore() *fakeDataStore {
	return &fakeDataStore{records: map[string]string{}}
}

func joinKey(key []string) string {
	s := ""
	for i, k := range key {
		if i > 0 {
			s += "/"
		}
		s += k
	}
	return s
}

func (f *fakeDataStore) ListDataStore(ctx context.Context, key []string) ([]node.DataStoreRecord, error) {
	prefix := joinKey(key)
	var out []node.DataStoreRecord
	for k, v := range f.records {
		if k == prefix || (len(k) > len(prefix) && k[:len(prefix)+1] == prefix+"/") {
			out = append(out, node.DataStoreRecord{String: v})
		}
	}
	return out, nil
}

func (f *fakeDataStore) DataStore(ctx context.Context, key []string, value string, mode node.DataStoreMode) error {
	k := joinKey(key)
	_, exists := f.records[k]
	switch mode {
	case node.ModeMustCreate:
		if exists {
			return errDatastoreConflict
		}
	case node.ModeMustReplace:
		if !exists {
			return errDatastoreNotFound
		}
	}
	f.records[k] = value
	return nil
}

func (f *fakeDataStore) DelDataStore(ctx context.Context, key []string) error {
	k := joinKey(key)
	if _, exists := f.records[k]; !exists {
		return errDatastoreNotFound
	}
	delete(f.records, k)
	return nil
}

type datastoreErr string

func (e datastoreErr) Error() string { return string(e) }

const (
	errDatastoreConflict = datastoreErr("key exists")
	errDatastoreNotFound = datastoreErr("key does not exist")
)

func ptr(v int64) *int64 { return &v }

func TestCreateThenFind(t *testing.T) {
	s := New(newFakeDataStore())
	ctx := context.Background()

	conn := &Connection{Secret: "abc", BudgetMsat: ptr(10_000), SpentMsat: 0}
	if err := s.Create(ctx, "pub1", conn); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Find(ctx, "pub1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got == nil || got.Secret != "abc" || *got.BudgetMsat != 10_000 {
		t.Fatalf("unexpected connection: %+v", got)
	}
}

func TestCreateConflict(t *testing.T) {
	s := New(newFakeDataStore())
	ctx := context.Background()
	conn := &Connection{Secret: "abc"}
	if err := s.Create(ctx, "pub1", conn); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := s.Create(ctx, "pub1", conn)
	if !IsConflict(err) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestFindMissingReturnsNil(t *testing.T) {
	s := New(newFakeDataStore())
	got, err := s.Find(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestUpdateSpentCAS(t *testing.T) {
	s := New(newFakeDataStore())
	ctx := context.Background()
	conn := &Connection{Secret: "abc", BudgetMsat: ptr(10_000), SpentMsat: 0}
	if err := s.Create(ctx, "pub1", conn); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.UpdateSpent(ctx, "pub1", conn, 3_100); err != nil {
		t.Fatalf("UpdateSpent: %v", err)
	}

	got, err := s.Find(ctx, "pub1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.SpentMsat != 3_100 {
		t.Fatalf("SpentMsat = %d, want 3100", got.SpentMsat)
	}
}

func TestUpdateSpentAfterRevokeIsNotFound(t *testing.T) {
	s := New(newFakeDataStore())
	ctx := context.Background()
	conn := &Connection{Secret: "abc"}
	if err := s.Create(ctx, "pub1", conn); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(ctx, "pub1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	err := s.UpdateSpent(ctx, "pub1", conn, 500)
	if !IsNotFound(err) {
		t.Fatalf("expected NotFound after revoke raced the update, got %v", err)
	}
}

func TestFindAll(t *testing.T) {
	s := New(newFakeDataStore())
	ctx := context.Background()
	if err := s.Create(ctx, "pub1", &Connection{Secret: "a"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, "pub2", &Connection{Secret: "b"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := s.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(all))
	}
}

func TestConnectionExpired(t *testing.T) {
	c := &Connection{ExpiryUnix: ptr(1000)}
	if !c.Expired(1001) {
		t.Error("expected expired at now=1001, expiry=1000")
	}
	if c.Expired(999) {
		t.Error("expected not expired at now=999, expiry=1000")
	}

	unlimited := &Connection{}
	if unlimited.Expired(1<<62) {
		t.Error("connection with no expiry should never expire")
	}
}

func TestRemainingBudget(t *testing.T) {
	c := &Connection{BudgetMsat: ptr(10_000), SpentMsat: 3_100}
	r := c.RemainingBudget()
	if r == nil || *r != 6_900 {
		t.Fatalf("RemainingBudget = %v, want 6900", r)
	}

	unlimited := &Connection{SpentMsat: 500}
	if unlimited.RemainingBudget() != nil {
		t.Error("expected nil remaining budget for unlimited connection")
	}
}
