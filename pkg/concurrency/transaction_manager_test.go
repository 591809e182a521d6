package concurrency_test

import (
	"testing"

	"mothball/pkg/concurrency"

	"github.com/google/uuid"
)

const testTree = "t"

func newTestManager() *concurrency.TransactionManager {
	lm := concurrency.NewResourceLockManager()
	return concurrency.NewTransactionManager(lm)
}

func TestLockUnlockSamePage(t *testing.T) {
	tm := newTestManager()
	clientId := uuid.New()
	if err := tm.Begin(clientId); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tm.Lock(clientId, testTree, 1, concurrency.W_LOCK); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := tm.Unlock(clientId, testTree, 1, concurrency.W_LOCK); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := tm.Commit(clientId); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestLockWithoutTransactionFails(t *testing.T) {
	tm := newTestManager()
	if err := tm.Lock(uuid.New(), testTree, 1, concurrency.W_LOCK); err == nil {
		t.Fatal("Lock without Begin should have failed")
	}
}

func TestUpgradingReadLockFails(t *testing.T) {
	tm := newTestManager()
	clientId := uuid.New()
	if err := tm.Begin(clientId); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tm.Lock(clientId, testTree, 1, concurrency.R_LOCK); err != nil {
		t.Fatalf("Lock R_LOCK: %v", err)
	}
	if err := tm.Lock(clientId, testTree, 1, concurrency.W_LOCK); err == nil {
		t.Fatal("upgrading R_LOCK to W_LOCK should have failed")
	}
}

func TestCommitReleasesAllLocks(t *testing.T) {
	tm := newTestManager()
	writer := uuid.New()
	if err := tm.Begin(writer); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tm.Lock(writer, testTree, 5, concurrency.W_LOCK); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := tm.Commit(writer); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	reader := uuid.New()
	if err := tm.Begin(reader); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := tm.Lock(reader, testTree, 5, concurrency.W_LOCK); err != nil {
		t.Fatalf("Lock after commit released prior holder's lock: %v", err)
	}
}
