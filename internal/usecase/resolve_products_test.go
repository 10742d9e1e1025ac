package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/algovyborg/lesson-payments/internal/entity"
	"github.com/algovyborg/lesson-payments/internal/infra/integration/amocrm"
	"github.com/algovyborg/lesson-payments/internal/usecase"
)

// The lead carries two catalog elements; only the last attached one is
// resolved.
func TestResolveLeadProductsUsesLastElement(t *testing.T) {
	ctx := context.Background()
	crm := new(MockCRMGateway)

	crm.On("GetLead", ctx, 101).Return(&amocrm.Lead{
		ID:   101,
		Name: "Maria Ivanova",
		CatalogElements: []amocrm.CatalogElementRef{
			{ID: 500, Metadata: amocrm.ElementMetadata{CatalogID: 7001}},
			{ID: 501, Metadata: amocrm.ElementMetadata{CatalogID: 7001}},
		},
	}, nil)
	crm.On("GetCatalogElement", ctx, 7001, 501).Return(&amocrm.CatalogElement{
		ID: 501,
		Fields: []amocrm.CustomField{
			{FieldType: "items", Items: []entity.ProductLine{
				{ProductID: 1760489, Description: "Course, 4 lessons"},
			}},
		},
	}, nil)

	uc := usecase.NewResolveLeadProductsUseCase(crm)
	lead, lines, err := uc.Execute(ctx, 101)

	assert.NoError(t, err)
	assert.Equal(t, 101, lead.ID)
	assert.Len(t, lines, 1)
	assert.Equal(t, 1760489, lines[0].ProductID)
	crm.AssertNotCalled(t, "GetCatalogElement", ctx, 7001, 500)
}

// No attached element is not an error: the lead still comes back so the
// caller can dead-letter it with context.
func TestResolveLeadProductsWithoutElements(t *testing.T) {
	ctx := context.Background()
	crm := new(MockCRMGateway)
	crm.On("GetLead", ctx, 101).Return(&amocrm.Lead{ID: 101, Name: "Maria Ivanova"}, nil)

	uc := usecase.NewResolveLeadProductsUseCase(crm)
	lead, lines, err := uc.Execute(ctx, 101)

	assert.NoError(t, err)
	assert.NotNil(t, lead)
	assert.Empty(t, lines)
	crm.AssertNotCalled(t, "GetCatalogElement", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveLeadProductsLeadFetchError(t *testing.T) {
	ctx := context.Background()
	crm := new(MockCRMGateway)
	crm.On("GetLead", ctx, 101).Return(nil, errors.New("amocrm: not found"))

	uc := usecase.NewResolveLeadProductsUseCase(crm)
	lead, lines, err := uc.Execute(ctx, 101)

	assert.Error(t, err)
	assert.Nil(t, lead)
	assert.Nil(t, lines)
}

func TestResolveLeadProductsElementFetchError(t *testing.T) {
	ctx := context.Background()
	crm := new(MockCRMGateway)
	crm.On("GetLead", ctx, 101).Return(&amocrm.Lead{
		ID: 101,
		CatalogElements: []amocrm.CatalogElementRef{
			{ID: 500, Metadata: amocrm.ElementMetadata{CatalogID: 7001}},
		},
	}, nil)
	crm.On("GetCatalogElement", ctx, 7001, 500).Return(nil, errors.New("amocrm: status 500"))

	uc := usecase.NewResolveLeadProductsUseCase(crm)
	lead, lines, err := uc.Execute(ctx, 101)

	assert.Error(t, err)
	assert.NotNil(t, lead)
	assert.Nil(t, lines)
}
