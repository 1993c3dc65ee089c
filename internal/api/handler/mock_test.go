package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/repair"
)

type mockProvisioner struct {
	mock.Mock
}

func (m *mockProvisioner) Provision(ctx context.Context, domainName, mode string) (*model.Domain, *model.DomainDeployment, error) {
	args := m.Called(ctx, domainName, mode)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Domain), args.Get(1).(*model.DomainDeployment), args.Error(2)
}

func (m *mockProvisioner) Start(ctx context.Context, domainID, subdomain string) (*model.DomainDeployment, error) {
	args := m.Called(ctx, domainID, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DomainDeployment), args.Error(1)
}

func (m *mockProvisioner) Cancel(ctx context.Context, runID string) error {
	return m.Called(ctx, runID).Error(0)
}

func (m *mockProvisioner) Teardown(domain *model.Domain, hosts []string) {
	m.Called(domain, hosts)
}

type mockRuns struct {
	mock.Mock
}

func (m *mockRuns) GetByID(ctx context.Context, id string) (*model.DomainDeployment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DomainDeployment), args.Error(1)
}

func (m *mockRuns) ListByDomain(ctx context.Context, domainID string) ([]model.DomainDeployment, error) {
	args := m.Called(ctx, domainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DomainDeployment), args.Error(1)
}

type mockDomains struct {
	mock.Mock
}

func (m *mockDomains) List(ctx context.Context) ([]model.Domain, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Domain), args.Error(1)
}

func (m *mockDomains) GetByID(ctx context.Context, id string) (*model.Domain, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Domain), args.Error(1)
}

func (m *mockDomains) IncrementBanCount(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *mockDomains) Delete(ctx context.Context, id string, cascade bool) error {
	return m.Called(ctx, id, cascade).Error(0)
}

type mockPages struct {
	mock.Mock
}

func (m *mockPages) Create(ctx context.Context, p *model.LandingPage, domain *model.Domain) error {
	return m.Called(ctx, p, domain).Error(0)
}

func (m *mockPages) GetByID(ctx context.Context, id string) (*model.LandingPage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LandingPage), args.Error(1)
}

func (m *mockPages) ListByDomain(ctx context.Context, domainID string) ([]model.LandingPage, error) {
	args := m.Called(ctx, domainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LandingPage), args.Error(1)
}

func (m *mockPages) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) Check(ctx context.Context, domainID string, fix bool) (*repair.Report, error) {
	args := m.Called(ctx, domainID, fix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repair.Report), args.Error(1)
}

func (m *mockReconciler) Verify(ctx context.Context, domainID string) (*repair.Verification, error) {
	args := m.Called(ctx, domainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repair.Verification), args.Error(1)
}

// chanSubscriber hands out prepared channels in order and a closed channel
// once they run out.
type chanSubscriber struct {
	chans []chan model.DeploymentLog
	calls int
}

func (s *chanSubscriber) Subscribe(string) (<-chan model.DeploymentLog, func()) {
	s.calls++
	if len(s.chans) == 0 {
		ch := make(chan model.DeploymentLog)
		close(ch)
		return ch, func() {}
	}
	ch := s.chans[0]
	s.chans = s.chans[1:]
	return ch, func() {}
}
