package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/upb/agri-advisory-gateway/repositories"
)

// MockTransactionManager is a mock implementation of TransactionManager
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(repositories.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTransaction records commits and rollbacks. Its Context is tagged so
// tests can check fn received the transaction's context.
type MockTransaction struct {
	mock.Mock
	ctx        context.Context
	committed  bool
	rolledback bool
}

type txTag struct{}

func newMockTransaction(parent context.Context) *MockTransaction {
	return &MockTransaction{ctx: context.WithValue(parent, txTag{}, "tx")}
}

func (m *MockTransaction) Commit() error {
	args := m.Called()
	m.committed = true
	return args.Error(0)
}

func (m *MockTransaction) Rollback() error {
	args := m.Called()
	m.rolledback = true
	return args.Error(0)
}

func (m *MockTransaction) Context() context.Context {
	return m.ctx
}

func TestWithTransaction_Success(t *testing.T) {
	ctx := context.Background()
	mockTxMgr := new(MockTransactionManager)
	mockTx := newMockTransaction(ctx)

	mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
	mockTx.On("Commit").Return(nil)

	var seen interface{}
	err := WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
		seen = ctx.Value(txTag{})
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "tx", seen)
	assert.True(t, mockTx.committed)
	assert.False(t, mockTx.rolledback)
	mockTxMgr.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestWithTransaction_ErrorInFunction(t *testing.T) {
	ctx := context.Background()
	mockTxMgr := new(MockTransactionManager)
	mockTx := newMockTransaction(ctx)
	expectedErr := errors.New("operation failed")

	mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
	mockTx.On("Rollback").Return(nil)

	err := WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
		return expectedErr
	})

	assert.Equal(t, expectedErr, err)
	assert.False(t, mockTx.committed)
	assert.True(t, mockTx.rolledback)
	mockTx.AssertExpectations(t)
}

func TestWithTransaction_BeginError(t *testing.T) {
	ctx := context.Background()
	mockTxMgr := new(MockTransactionManager)

	mockTxMgr.On("Begin", ctx).Return(nil, errors.New("connection refused"))

	called := false
	err := WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
		called = true
		return nil
	})

	assert.ErrorContains(t, err, "failed to begin transaction")
	assert.False(t, called)
	mockTxMgr.AssertExpectations(t)
}

func TestWithTransaction_RollbackError(t *testing.T) {
	ctx := context.Background()
	mockTxMgr := new(MockTransactionManager)
	mockTx := newMockTransaction(ctx)

	mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
	mockTx.On("Rollback").Return(errors.New("rollback failed"))

	err := WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
		return errors.New("insert failed")
	})

	assert.ErrorContains(t, err, "transaction error: insert failed")
	assert.ErrorContains(t, err, "rollback error")
	assert.True(t, mockTx.rolledback)
}

func TestWithTransaction_PanicRollsBack(t *testing.T) {
	ctx := context.Background()
	mockTxMgr := new(MockTransactionManager)
	mockTx := newMockTransaction(ctx)

	mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
	mockTx.On("Rollback").Return(nil)

	assert.PanicsWithValue(t, "boom", func() {
		_ = WithTransaction(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) error {
			panic("boom")
		})
	})
	assert.True(t, mockTx.rolledback)
}

func TestWithTransactionResult(t *testing.T) {
	t.Run("returns the value on commit", func(t *testing.T) {
		ctx := context.Background()
		mockTxMgr := new(MockTransactionManager)
		mockTx := newMockTransaction(ctx)

		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Commit").Return(nil)

		result, err := WithTransactionResult(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) (string, error) {
			return "saved", nil
		})

		assert.NoError(t, err)
		assert.Equal(t, "saved", result)
		assert.True(t, mockTx.committed)
	})

	t.Run("commit failure", func(t *testing.T) {
		ctx := context.Background()
		mockTxMgr := new(MockTransactionManager)
		mockTx := newMockTransaction(ctx)

		mockTxMgr.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Commit").Return(errors.New("commit failed"))

		result, err := WithTransactionResult(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) (int, error) {
			return 42, nil
		})

		assert.ErrorContains(t, err, "failed to commit transaction")
		assert.Equal(t, 42, result)
	})

	t.Run("begin failure returns the zero value", func(t *testing.T) {
		ctx := context.Background()
		mockTxMgr := new(MockTransactionManager)
		mockTxMgr.On("Begin", ctx).Return(nil, errors.New("pool exhausted"))

		result, err := WithTransactionResult(ctx, mockTxMgr, func(ctx context.Context, tx repositories.Transaction) (int, error) {
			return 42, nil
		})

		assert.Error(t, err)
		assert.Equal(t, 0, result)
	})
}
