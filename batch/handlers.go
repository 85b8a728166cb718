package batch

import (
	"context"
	"fmt"

	"github.com/mamcisaac/teaching-engine/store"
)

// HandlerFunc persists one operation inside an open transaction. The tx
// handle is whatever the configured TransactionRunner passes to its
// transaction function; handlers type-assert it to their store's concrete
// transaction type.
type HandlerFunc func(ctx context.Context, tx any, op *Operation) error

// HandlerTable maps each operation kind to its handler. The table is
// consulted on every drain; an operation whose kind has no entry fails with
// a terminal error rather than panicking.
type HandlerTable map[Kind]HandlerFunc

// Register adds or replaces the handler for kind.
func (t HandlerTable) Register(kind Kind, fn HandlerFunc) { t[kind] = fn }

// StoreHandlers returns the built-in handler table persisting each variant
// to a store.InMemory-compatible transaction.
func StoreHandlers() HandlerTable {
	return HandlerTable{
		KindUnit: func(_ context.Context, tx any, op *Operation) error {
			stx, err := storeTx(tx)
			if err != nil {
				return err
			}
			p, err := payloadAs[UnitPayload](op)
			if err != nil {
				return err
			}
			_, err = stx.CreateUnit(store.Unit{
				Title:          p.Title,
				PlanID:         p.PlanID,
				ExpectationIDs: p.ExpectationIDs,
				StartDate:      p.StartDate,
				EndDate:        p.EndDate,
			})
			return err
		},
		KindLesson: func(_ context.Context, tx any, op *Operation) error {
			stx, err := storeTx(tx)
			if err != nil {
				return err
			}
			p, err := payloadAs[LessonPayload](op)
			if err != nil {
				return err
			}
			_, err = stx.CreateLesson(store.Lesson{
				Title:      p.Title,
				UnitID:     p.UnitID,
				Objectives: p.Objectives,
			})
			return err
		},
		KindExpectation: func(_ context.Context, tx any, op *Operation) error {
			stx, err := storeTx(tx)
			if err != nil {
				return err
			}
			p, err := payloadAs[ExpectationPayload](op)
			if err != nil {
				return err
			}
			_, err = stx.CreateExpectation(store.Expectation{
				Code:        p.Code,
				Description: p.Description,
				Subject:     p.Subject,
			})
			return err
		},
		KindResource: func(_ context.Context, tx any, op *Operation) error {
			stx, err := storeTx(tx)
			if err != nil {
				return err
			}
			p, err := payloadAs[ResourcePayload](op)
			if err != nil {
				return err
			}
			_, err = stx.CreateResource(store.Resource{
				Title:  p.Title,
				URL:    p.URL,
				UnitID: p.UnitID,
			})
			return err
		},
	}
}

func storeTx(tx any) (*store.Tx, error) {
	stx, ok := tx.(*store.Tx)
	if !ok {
		return nil, fmt.Errorf("unexpected transaction type %T", tx)
	}
	return stx, nil
}

// payloadAs checks the concrete payload type, so a custom Payload reporting a
// built-in kind fails the operation instead of panicking the drain.
func payloadAs[T Payload](op *Operation) (T, error) {
	p, ok := op.Payload.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected payload type %T for operation kind %q", op.Payload, op.Kind())
	}
	return p, nil
}
