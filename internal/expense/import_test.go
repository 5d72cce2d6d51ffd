package expense_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/spesapp/internal/expense"
)

func TestService_Import(t *testing.T) {
	existing := []*expense.Expense{
		{ID: "a", Amount: 4.2, Description: "Bar Centrale", Category: expense.CategoryDining, Date: day(2024, time.March, 1)},
	}

	coffee := expense.AddParams{Amount: 4.2, Description: "bar centrale ", Category: expense.CategoryDining, Date: day(2024, time.March, 1)}
	train := expense.AddParams{Amount: 12, Description: "Trenitalia", Category: expense.CategoryTransport, Date: day(2024, time.March, 2)}

	type testCase struct {
		name          string
		batch         []expense.AddParams
		setupMock     func(m *expense.MockRepository)
		wantErr       bool
		wantAdded     int
		wantDuplicate int
	}

	tests := []testCase{
		{
			name:  "SkipsRecordedExpense",
			batch: []expense.AddParams{coffee, train},
			setupMock: func(m *expense.MockRepository) {
				m.EXPECT().ListExpenses(gomock.Any()).Return(existing, nil)
				m.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).Return(nil).Times(1)
			},
			wantAdded:     1,
			wantDuplicate: 1,
		},
		{
			name:  "RepeatedRowsKeptOncePerMissingCopy",
			batch: []expense.AddParams{coffee, coffee, train, train},
			setupMock: func(m *expense.MockRepository) {
				m.EXPECT().ListExpenses(gomock.Any()).Return(existing, nil)
				m.EXPECT().CreateExpense(gomock.Any(), gomock.Any()).Return(nil).Times(3)
			},
			wantAdded:     3,
			wantDuplicate: 1,
		},
		{
			name:      "EmptyBatch",
			setupMock: func(_ *expense.MockRepository) {},
		},
		{
			name:      "InvalidEntryStoresNothing",
			batch:     []expense.AddParams{train, {Amount: 0, Category: expense.CategoryOther, Date: day(2024, time.March, 3)}},
			setupMock: func(_ *expense.MockRepository) {},
			wantErr:   true,
		},
		{
			name:  "ListError",
			batch: []expense.AddParams{train},
			setupMock: func(m *expense.MockRepository) {
				m.EXPECT().ListExpenses(gomock.Any()).Return(nil, errors.New("disk"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := expense.NewMockRepository(ctrl)
			tt.setupMock(repo)

			result, err := newService(repo).Import(context.Background(), tt.batch)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, result.Added, tt.wantAdded)
			assert.Len(t, result.Duplicates, tt.wantDuplicate)

			for _, e := range result.Added {
				assert.NotEmpty(t, e.ID)
			}
		})
	}
}

func TestService_Import_ReportsEntryNumber(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := expense.NewMockRepository(ctrl)

	_, err := newService(repo).Import(context.Background(), []expense.AddParams{
		{Amount: 1, Category: expense.CategoryOther, Date: day(2024, time.March, 1)},
		{Amount: 1, Category: "bogus", Date: day(2024, time.March, 1)},
	})

	require.ErrorIs(t, err, expense.ErrInvalidCategory)
	assert.Contains(t, err.Error(), "entry 2")
}
