package milestone

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/klokku/studyplan/internal/docstore"
	"github.com/klokku/studyplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

const shownDocumentId = "all"

// ShownStore keeps the shown set in the durable store with a local mirror.
//
// The durable store is the source of truth once it holds anything. The mirror
// is written on every change and read only when the durable store fails or is
// empty. A non-empty mirror found next to an empty durable store is copied to
// it in the background. The durable store never receives mirror content
// otherwise, so it is never overwritten by it.
type ShownStore struct {
	durable docstore.Store
	mirror  docstore.Store
	mu      sync.Mutex
	wg      sync.WaitGroup
}

func NewShownStore(durable docstore.Store, mirror docstore.Store) *ShownStore {
	return &ShownStore{durable: durable, mirror: mirror}
}

type source int

const (
	fromDurable source = iota
	fromMirror
	// the durable store failed, the mirror stands in for this call
	fromMirrorFallback
)

// Load returns the shown set of u. The durable store is addressed by uid, the
// mirror by session key since it is shared by demo and authenticated sessions.
func (s *ShownStore) Load(ctx context.Context, u user.User) (*ShownSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, _, err := s.load(ctx, u)
	return set, err
}

// Add appends id and persists the set. Adding an id already shown writes nothing.
func (s *ShownStore) Add(ctx context.Context, u user.User, id string) (*ShownSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, src, err := s.load(ctx, u)
	if err != nil {
		return nil, err
	}
	if !set.Add(id) {
		return set, nil
	}

	mirrorErr := s.write(ctx, s.mirror, u.SessionKey(), set)
	if mirrorErr != nil {
		log.Warnf("failed to update shown milestones mirror of %s: %v", u.SessionKey(), mirrorErr)
	}
	if src == fromMirrorFallback {
		if mirrorErr != nil {
			return nil, mirrorErr
		}
		return set, nil
	}
	if err := s.write(ctx, s.durable, u.Uid, set); err != nil {
		if mirrorErr != nil {
			return nil, errors.Join(err, mirrorErr)
		}
		log.Warnf("shown milestone %s kept in local mirror only: %v", id, err)
	}
	return set, nil
}

// Wait blocks until background backfills finished.
func (s *ShownStore) Wait() {
	s.wg.Wait()
}

func (s *ShownStore) load(ctx context.Context, u user.User) (*ShownSet, source, error) {
	owner := u.Uid
	durableSet, durableErr := s.read(ctx, s.durable, owner)
	if durableErr == nil && durableSet.Len() > 0 {
		return durableSet, fromDurable, nil
	}

	mirrorSet, mirrorErr := s.read(ctx, s.mirror, u.SessionKey())
	if durableErr != nil {
		if mirrorErr != nil {
			return nil, fromMirrorFallback, fmt.Errorf("shown milestones unavailable: %w", errors.Join(durableErr, mirrorErr))
		}
		log.Warnf("durable store failed, using local mirror of shown milestones for %s: %v", owner, durableErr)
		return mirrorSet, fromMirrorFallback, nil
	}
	if mirrorErr != nil {
		log.Warnf("failed to read shown milestones mirror of %s: %v", owner, mirrorErr)
		return durableSet, fromDurable, nil
	}
	if mirrorSet.Len() > 0 {
		s.backfill(ctx, owner, mirrorSet)
		return mirrorSet, fromMirror, nil
	}
	return durableSet, fromDurable, nil
}

// backfill copies the mirror to the durable store if that is still empty.
func (s *ShownStore) backfill(ctx context.Context, owner string, set *ShownSet) {
	ctx = context.WithoutCancel(ctx)
	snapshot := NewShownSet(set.IDs()...)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.mu.Lock()
		defer s.mu.Unlock()

		current, err := s.read(ctx, s.durable, owner)
		if err != nil {
			log.Warnf("backfill of shown milestones for %s postponed: %v", owner, err)
			return
		}
		if current.Len() > 0 {
			return
		}
		if err := s.write(ctx, s.durable, owner, snapshot); err != nil {
			log.Warnf("backfill of shown milestones for %s failed: %v", owner, err)
			return
		}
		log.Infof("backfilled %d shown milestones of %s from local mirror", snapshot.Len(), owner)
	}()
}

func (s *ShownStore) read(ctx context.Context, store docstore.Store, owner string) (*ShownSet, error) {
	set := NewShownSet()
	if _, err := docstore.GetJSON(ctx, store, owner, docstore.ShownMilestones, shownDocumentId, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *ShownStore) write(ctx context.Context, store docstore.Store, owner string, set *ShownSet) error {
	return docstore.SetJSON(ctx, store, owner, docstore.ShownMilestones, shownDocumentId, set)
}
