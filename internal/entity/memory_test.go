package entity

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"identrust/internal/sentinel"
	"identrust/pkg/domain"
	"identrust/pkg/platform/middleware/requesttime"
)

type note struct {
	Meta
	Text string
	Tags []string
}

func cloneNote(n note) note {
	n.Tags = slices.Clone(n.Tags)
	return n
}

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore[note, *note]
	base  time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore[note, *note](domain.PrefixCredential, WithClone(cloneNote))
	s.base = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) at(offset time.Duration) context.Context {
	return requesttime.WithTime(context.Background(), s.base.Add(offset))
}

func (s *MemoryStoreSuite) TestCreateFillsMetadata() {
	n := &note{Meta: Meta{CreatedBy: "ada@example.com"}, Text: "hello"}
	s.Require().NoError(s.store.Create(s.at(0), n))

	s.True(strings.HasPrefix(n.ID, "cred_"))
	s.Equal(s.base, n.CreatedDate)
	s.Equal(s.base, n.UpdatedDate)

	got, err := s.store.Get(context.Background(), n.ID)
	s.Require().NoError(err)
	s.Equal(*n, *got)
}

func (s *MemoryStoreSuite) TestCreateKeepsPregeneratedID() {
	id := domain.NewID(domain.PrefixCredential)
	n := &note{Meta: Meta{ID: id}}
	s.Require().NoError(s.store.Create(s.at(0), n))
	s.Equal(id, n.ID)

	err := s.store.Create(s.at(0), &note{Meta: Meta{ID: id}})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *MemoryStoreSuite) TestGetMissing() {
	_, err := s.store.Get(context.Background(), "cred_missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestListSortAndLimit() {
	for i := range 4 {
		s.Require().NoError(s.store.Create(s.at(time.Duration(i)*time.Minute), &note{Text: fmt.Sprint(i)}))
	}

	newest, err := s.store.List(context.Background(), ListOptions{Sort: NewestFirst, Limit: 3})
	s.Require().NoError(err)
	s.Equal([]string{"3", "2", "1"}, texts(newest))

	oldest, err := s.store.List(context.Background(), ListOptions{Sort: Sort{Field: FieldCreatedDate}})
	s.Require().NoError(err)
	s.Equal([]string{"0", "1", "2", "3"}, texts(oldest))

	defaults, err := s.store.List(context.Background(), ListOptions{})
	s.Require().NoError(err)
	s.Equal("3", defaults[0].Text)
}

func (s *MemoryStoreSuite) TestListBreaksTiesByInsertion() {
	for _, text := range []string{"a", "b", "c"} {
		s.Require().NoError(s.store.Create(s.at(0), &note{Text: text}))
	}

	newest, err := s.store.List(context.Background(), ListOptions{Sort: NewestFirst})
	s.Require().NoError(err)
	s.Equal([]string{"c", "b", "a"}, texts(newest))
}

func (s *MemoryStoreSuite) TestListFiltersByOwner() {
	s.Require().NoError(s.store.Create(s.at(0), &note{Meta: Meta{CreatedBy: "ada@example.com"}, Text: "mine"}))
	s.Require().NoError(s.store.Create(s.at(0), &note{Meta: Meta{CreatedBy: "bob@example.com"}, Text: "theirs"}))

	mine, err := s.store.List(context.Background(), ListOptions{CreatedBy: "ada@example.com"})
	s.Require().NoError(err)
	s.Equal([]string{"mine"}, texts(mine))
}

func (s *MemoryStoreSuite) TestReturnedRecordsAreCopies() {
	n := &note{Tags: []string{"x"}}
	s.Require().NoError(s.store.Create(s.at(0), n))
	n.Tags[0] = "mutated by caller"

	got, err := s.store.Get(context.Background(), n.ID)
	s.Require().NoError(err)
	got.Tags[0] = "mutated again"

	again, err := s.store.Get(context.Background(), n.ID)
	s.Require().NoError(err)
	s.Equal([]string{"x"}, again.Tags)
}

func (s *MemoryStoreSuite) TestUpdateBumpsUpdatedDateOnlyOnChange() {
	n := &note{Meta: Meta{CreatedBy: "ada@example.com"}, Text: "v1"}
	s.Require().NoError(s.store.Create(s.at(0), n))

	setText := func(v string) Patch[note] {
		return func(rec *note) bool {
			if rec.Text == v {
				return false
			}
			rec.Text = v
			return true
		}
	}

	first, err := s.store.Update(s.at(time.Hour), n.ID, setText("v2"))
	s.Require().NoError(err)
	s.Equal("v2", first.Text)
	s.Equal(s.base.Add(time.Hour), first.UpdatedDate)

	second, err := s.store.Update(s.at(2*time.Hour), n.ID, setText("v2"))
	s.Require().NoError(err)
	s.Equal(*first, *second)
}

func (s *MemoryStoreSuite) TestUpdateProtectsMetadata() {
	n := &note{Meta: Meta{CreatedBy: "ada@example.com"}}
	s.Require().NoError(s.store.Create(s.at(0), n))

	got, err := s.store.Update(s.at(time.Minute), n.ID, func(rec *note) bool {
		rec.ID = "cred_other"
		rec.CreatedBy = "mallory@example.com"
		rec.Text = "changed"
		return true
	})
	s.Require().NoError(err)
	s.Equal(n.ID, got.ID)
	s.Equal("ada@example.com", got.CreatedBy)
	s.Equal(s.base, got.CreatedDate)
}

func (s *MemoryStoreSuite) TestUpdateMissing() {
	_, err := s.store.Update(context.Background(), "cred_missing", func(*note) bool { return true })
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func TestMemoryStoreUniqueKey(t *testing.T) {
	store := NewMemoryStore[note, *note](domain.PrefixIdentity, WithUniqueKey(func(n *note) string { return n.CreatedBy }))
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &note{Meta: Meta{CreatedBy: "ada@example.com"}}))
	err := store.Create(ctx, &note{Meta: Meta{CreatedBy: "ada@example.com"}})
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	require.NoError(t, store.Create(ctx, &note{Meta: Meta{CreatedBy: "bob@example.com"}}))
}

func TestMemoryStoreImmutable(t *testing.T) {
	store := NewMemoryStore[note, *note](domain.PrefixVerification, Immutable[note]())
	ctx := context.Background()
	n := &note{Text: "log entry"}
	require.NoError(t, store.Create(ctx, n))

	_, err := store.Update(ctx, n.ID, func(rec *note) bool { rec.Text = "rewritten"; return true })
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)

	got, err := store.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "log entry", got.Text)
}

func TestMemoryStoreConcurrentCreate(t *testing.T) {
	store := NewMemoryStore[note, *note](domain.PrefixVerification)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Create(ctx, &note{}))
		}()
	}
	wg.Wait()

	all, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 50)
}

func texts(notes []*note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Text)
	}
	return out
}
