package btree

import (
	"mothball/pkg/concurrency"
	"mothball/pkg/evict"
)

// EvictSession pairs one evict.Session with the resource-lock context
// the resource-lock context an evicting session runs under: "a session evicting a page
// still holds whatever table/row locks the ResourceLockManager
// tracks". This generalizes the per-transaction row lock
// (pkg/concurrency, keyed on a table name and an entry key) to a
// per-page lock keyed on this tree's name and the page's address,
// acquired and released around every Evict call by the very same
// TransactionManager otherwise used for KV rows.
type EvictSession struct {
	Engine *evict.Engine

	sess     *evict.Session
	tm       *concurrency.TransactionManager
	treeName string
}

// NewEvictSession builds an EvictSession driving engine's Evict calls
// under tm's locks, identified to tm by sess's own session id - the
// same generalization of Transaction.clientId to eviction that
// evict.Session's doc comment describes.
func NewEvictSession(engine *evict.Engine, sess *evict.Session, tm *concurrency.TransactionManager, treeName string) *EvictSession {
	return &EvictSession{Engine: engine, sess: sess, tm: tm, treeName: treeName}
}

// Evict runs one Begin/Lock/Evict/Unlock/Commit cycle: it begins a
// transaction scoped to this call, takes a write lock on the page's
// resource, evicts, and always releases the lock and commits the
// transaction before returning - even when Evict itself returns a
// recoverable ErrBusy/ErrRejected, since the lock belongs to this call
// only, not to the page's ongoing eviction candidacy.
func (es *EvictSession) Evict(page *evict.Page, flags evict.Flags) error {
	clientId := es.sess.ID
	if err := es.tm.Begin(clientId); err != nil {
		return err
	}
	defer es.tm.Commit(clientId)

	resourceKey := int64(page.ID())
	if err := es.tm.Lock(clientId, es.treeName, resourceKey, concurrency.W_LOCK); err != nil {
		return err
	}
	defer es.tm.Unlock(clientId, es.treeName, resourceKey, concurrency.W_LOCK)

	return es.Engine.Evict(es.sess, page, flags)
}
