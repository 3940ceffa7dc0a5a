package service

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mvoloshin/exchange-bot/internal/domain"
)

func TestSessionStoreSetGetClear(t *testing.T) {
	store := NewSessionStore()

	_, ok := store.Get(1)
	assert.False(t, ok)

	store.Set(domain.Session{UserID: 1, TraceID: "t1", State: domain.StateAwaitingAmount})
	sess, ok := store.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "t1", sess.TraceID)

	store.Clear(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
}

func TestSessionStoreOverwrite(t *testing.T) {
	store := NewSessionStore()

	store.Set(domain.Session{UserID: 1, TraceID: "old"})
	store.Set(domain.Session{UserID: 1, TraceID: "new"})

	sess, ok := store.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "new", sess.TraceID)
}

func TestSessionStoreGetReturnsCopy(t *testing.T) {
	store := NewSessionStore()
	store.Set(domain.Session{UserID: 1, TraceID: "t1"})

	sess, _ := store.Get(1)
	sess.TraceID = "mutated"

	stored, _ := store.Get(1)
	assert.Equal(t, "t1", stored.TraceID)
}

func TestSessionStoreConcurrentUsersDoNotCross(t *testing.T) {
	store := NewSessionStore()

	var wg sync.WaitGroup
	for _, userID := range []int64{1, 2} {
		userID := userID
		wg.Add(1)
		go func() {
			defer wg.Done()
			want := decimal.NewFromInt(userID)
			for i := 0; i < 1000; i++ {
				store.Set(domain.Session{UserID: userID, TraceID: "t", FromAmount: want})
				sess, ok := store.Get(userID)
				if !ok || sess.UserID != userID || !sess.FromAmount.Equal(want) {
					t.Errorf("user %d read foreign session: %+v", userID, sess)
					return
				}
			}
		}()
	}
	wg.Wait()
}
