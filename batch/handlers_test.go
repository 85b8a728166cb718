package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamcisaac/teaching-engine/store"
)

// impostorPayload reports the unit kind but is not a UnitPayload.
type impostorPayload struct{}

func (impostorPayload) Kind() Kind           { return KindUnit }
func (impostorPayload) Validate() error      { return nil }
func (impostorPayload) DuplicateKey() string { return "impostor" }

func TestStoreHandlers_WrongConcreteTypeFailsWithoutPanic(t *testing.T) {
	s := store.NewInMemory()
	q := New(s, fastConfig(func(c *Config) { c.MaxRetries = 0 }))

	_, err := q.Add(context.Background(), "teacher-1", []Payload{impostorPayload{}})
	require.NoError(t, err)

	report, err := q.Process(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	op := q.Status("teacher-1").Operations[0]
	assert.Equal(t, StatusError, op.Status)
	require.NotEmpty(t, op.Errors)
	assert.Contains(t, op.Errors[0], "unexpected payload type")
	assert.Equal(t, 0, s.Counts()["units"])
}

func TestStoreHandlers_WrongTransactionType(t *testing.T) {
	handlers := StoreHandlers()
	op := &Operation{Payload: validUnit("U")}

	err := handlers[KindUnit](context.Background(), struct{}{}, op)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected transaction type")
}

func TestHandlerTable_RegisterReplaces(t *testing.T) {
	handlers := StoreHandlers()
	called := false
	handlers.Register(KindUnit, func(context.Context, any, *Operation) error {
		called = true
		return nil
	})

	require.NoError(t, handlers[KindUnit](context.Background(), nil, &Operation{}))
	assert.True(t, called)
}
