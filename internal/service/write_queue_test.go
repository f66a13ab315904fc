package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestWriteQueue(t *testing.T) {
	t.Run("ejecuta las tareas encoladas", func(t *testing.T) {
		q := NewWriteQueue(8)
		var ran atomic.Int32

		for i := 0; i < 5; i++ {
			q.Enqueue("tarea", func(ctx context.Context) error {
				ran.Add(1)
				return nil
			})
		}
		q.Close()

		if ran.Load() != 5 {
			t.Fatalf("ran = %d, want 5", ran.Load())
		}
	})

	t.Run("un error no frena a las tareas siguientes", func(t *testing.T) {
		q := NewWriteQueue(8)
		var ran atomic.Int32

		q.Enqueue("falla", func(ctx context.Context) error {
			return errors.New("remoto caído")
		})
		q.Enqueue("sigue", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
		q.Close()

		if ran.Load() != 1 {
			t.Fatal("la tarea posterior al error debió correr")
		}
	})

	t.Run("las tareas reciben un contexto con deadline", func(t *testing.T) {
		q := NewWriteQueue(1)
		var hasDeadline atomic.Bool

		q.Enqueue("check-ctx", func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			hasDeadline.Store(ok)
			return nil
		})
		q.Close()

		if !hasDeadline.Load() {
			t.Fatal("esperaba un contexto con timeout")
		}
	})

	t.Run("Close es idempotente", func(t *testing.T) {
		q := NewWriteQueue(1)
		q.Close()
		q.Close()
	})

	t.Run("tamaño no positivo usa el default", func(t *testing.T) {
		q := NewWriteQueue(0)
		if cap(q.tasks) != 64 {
			t.Fatalf("cap = %d, want 64", cap(q.tasks))
		}
		q.Close()
	})
}
