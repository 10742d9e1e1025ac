package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/algovyborg/lesson-payments/internal/entity"
	"github.com/algovyborg/lesson-payments/internal/infra/integration/amocrm"
)

// MockCRMGateway
type MockCRMGateway struct {
	mock.Mock
}

func (m *MockCRMGateway) GetLead(ctx context.Context, id int) (*amocrm.Lead, error) {
	args := m.Called(ctx, id)
	if lead, ok := args.Get(0).(*amocrm.Lead); ok {
		return lead, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCRMGateway) GetCatalogElement(ctx context.Context, catalogID, elementID int) (*amocrm.CatalogElement, error) {
	args := m.Called(ctx, catalogID, elementID)
	if el, ok := args.Get(0).(*amocrm.CatalogElement); ok {
		return el, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCRMGateway) GetInvoicePaidEvents(ctx context.Context, createdAtSince int64) ([]amocrm.Event, error) {
	args := m.Called(ctx, createdAtSince)
	if events, ok := args.Get(0).([]amocrm.Event); ok {
		return events, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCRMGateway) GetCatalogElementLinks(ctx context.Context, catalogID, elementID int, toEntityType string) ([]amocrm.EntityLink, error) {
	args := m.Called(ctx, catalogID, elementID, toEntityType)
	if links, ok := args.Get(0).([]amocrm.EntityLink); ok {
		return links, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockStudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) FindByNameCandidates(ctx context.Context, candidates []entity.NameCandidate) (*entity.Student, error) {
	args := m.Called(ctx, candidates)
	if s, ok := args.Get(0).(*entity.Student); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreateWithStudentTotals(ctx context.Context, p *entity.Payment, inc entity.StudentTotalsIncrement) error {
	args := m.Called(ctx, p, inc)
	return args.Error(0)
}

// MockUnprocessedRepository
type MockUnprocessedRepository struct {
	mock.Mock
}

func (m *MockUnprocessedRepository) Create(ctx context.Context, up *entity.UnprocessedPayment) error {
	args := m.Called(ctx, up)
	return args.Error(0)
}

func (m *MockUnprocessedRepository) List(ctx context.Context, onlyUnresolved bool) ([]entity.UnprocessedPayment, error) {
	args := m.Called(ctx, onlyUnresolved)
	if items, ok := args.Get(0).([]entity.UnprocessedPayment); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUnprocessedRepository) MarkResolved(ctx context.Context, id string, studentID *int64) error {
	args := m.Called(ctx, id, studentID)
	return args.Error(0)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) LogInfo(message string) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *MockNotifier) LogSuccess(message string) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *MockNotifier) LogError(message string) error {
	args := m.Called(message)
	return args.Error(0)
}
