package preferences

import (
	"context"
	"fmt"

	"github.com/klokku/studyplan/internal/docstore"
	"github.com/klokku/studyplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

const inclusionPolicyId = "inclusionPolicy"

type Service interface {
	// GetInclusionPolicy returns the stored policy or the default when none is stored.
	GetInclusionPolicy(ctx context.Context) (InclusionPolicy, error)
	SetInclusionPolicy(ctx context.Context, policy InclusionPolicy) error
}

type ServiceImpl struct {
	store         docstore.Store
	defaultPolicy InclusionPolicy
}

func NewService(store docstore.Store, defaultPolicy InclusionPolicy) *ServiceImpl {
	return &ServiceImpl{store: store, defaultPolicy: defaultPolicy}
}

func (s *ServiceImpl) GetInclusionPolicy(ctx context.Context) (InclusionPolicy, error) {
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return s.defaultPolicy, fmt.Errorf("failed to get current user: %w", err)
	}
	var value string
	found, err := docstore.GetJSON(ctx, s.store, owner, docstore.Preferences, inclusionPolicyId, &value)
	if err != nil {
		return s.defaultPolicy, err
	}
	if !found {
		return s.defaultPolicy, nil
	}
	policy, err := ParsePolicy(value)
	if err != nil {
		log.Warnf("stored inclusion policy ignored, using default: %v", err)
		return s.defaultPolicy, nil
	}
	return policy, nil
}

func (s *ServiceImpl) SetInclusionPolicy(ctx context.Context, policy InclusionPolicy) error {
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return docstore.SetJSON(ctx, s.store, owner, docstore.Preferences, inclusionPolicyId, policy.String())
}
