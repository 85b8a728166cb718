package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamcisaac/teaching-engine/core"
)

// Interface compliance (compile-time assertion)
var _ core.TransactionRunner = (*InMemory)(nil)

func TestInMemory_CommitPublishesWrites(t *testing.T) {
	s := NewInMemory()

	var unitID string
	err := s.RunInTransaction(context.Background(), func(tx any) error {
		stx := tx.(*Tx)
		u, err := stx.CreateUnit(Unit{
			Title:          "Fractions",
			PlanID:         "plan-1",
			ExpectationIDs: []string{"MATH-3-2"},
			StartDate:      time.Now(),
			EndDate:        time.Now().AddDate(0, 1, 0),
		})
		if err != nil {
			return err
		}
		unitID = u.ID
		_, err = stx.CreateLesson(Lesson{Title: "Halves and Quarters", UnitID: u.ID})
		return err
	})
	require.NoError(t, err)

	u, err := s.Unit(unitID)
	require.NoError(t, err)
	assert.Equal(t, "Fractions", u.Title)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, map[string]int{"units": 1, "lessons": 1, "expectations": 0, "resources": 0}, s.Counts())
}

func TestInMemory_RollbackDiscardsWrites(t *testing.T) {
	s := NewInMemory()
	sentinel := errors.New("validation failed downstream")

	err := s.RunInTransaction(context.Background(), func(tx any) error {
		stx := tx.(*Tx)
		if _, err := stx.CreateExpectation(Expectation{Code: "SCI-1-1", Description: "Observes weather"}); err != nil {
			return err
		}
		return sentinel
	})

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 0, s.Counts()["expectations"])
}

func TestInMemory_TxReadsSeeStagedWrites(t *testing.T) {
	s := NewInMemory()

	err := s.RunInTransaction(context.Background(), func(tx any) error {
		stx := tx.(*Tx)
		u, err := stx.CreateUnit(Unit{
			Title:          "Poetry",
			PlanID:         "plan-1",
			ExpectationIDs: []string{"LANG-4-1"},
			StartDate:      time.Now(),
			EndDate:        time.Now().AddDate(0, 0, 14),
		})
		if err != nil {
			return err
		}
		got, err := stx.Unit(u.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "Poetry", got.Title)
		return nil
	})
	require.NoError(t, err)
}

func TestInMemory_NotFound(t *testing.T) {
	s := NewInMemory()

	_, err := s.Unit("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Lesson("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Expectation("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Resource("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemory_RequiredFields(t *testing.T) {
	s := NewInMemory()

	err := s.RunInTransaction(context.Background(), func(tx any) error {
		_, err := tx.(*Tx).CreateUnit(Unit{})
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func TestInMemory_CancelledContext(t *testing.T) {
	s := NewInMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.RunInTransaction(ctx, func(tx any) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
