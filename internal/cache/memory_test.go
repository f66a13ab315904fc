package cache

import (
	"context"
	"testing"
	"time"
)

type payload struct {
	Name  string `json:"name"`
	Votes int    `json:"votes"`
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("roundtrip set/get", func(t *testing.T) {
		m := NewMemory()

		if err := m.SetJSON(ctx, "k", payload{Name: "Dune", Votes: 42}, 0); err != nil {
			t.Fatal(err)
		}

		var got payload
		ok, err := m.GetJSON(ctx, "k", &got)
		if err != nil || !ok {
			t.Fatalf("ok=%v err=%v", ok, err)
		}
		if got.Name != "Dune" || got.Votes != 42 {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("miss en key inexistente", func(t *testing.T) {
		m := NewMemory()
		var got payload
		ok, err := m.GetJSON(ctx, "nada", &got)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("esperaba miss")
		}
	})

	t.Run("una entrada con TTL expira", func(t *testing.T) {
		m := NewMemory()
		if err := m.SetJSON(ctx, "k", payload{Name: "x"}, time.Millisecond); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)

		var got payload
		ok, _ := m.GetJSON(ctx, "k", &got)
		if ok {
			t.Fatal("esperaba miss por expiración")
		}
		if m.Len() != 0 {
			t.Fatal("la entrada vencida debió borrarse al leer")
		}
	})

	t.Run("ttl cero es sin expiración", func(t *testing.T) {
		m := NewMemory()
		if err := m.SetJSON(ctx, "k", payload{Name: "x"}, 0); err != nil {
			t.Fatal(err)
		}
		var got payload
		if ok, _ := m.GetJSON(ctx, "k", &got); !ok {
			t.Fatal("esperaba hit")
		}
	})

	t.Run("delete saca la entrada", func(t *testing.T) {
		m := NewMemory()
		_ = m.SetJSON(ctx, "k", payload{}, 0)
		if err := m.Delete(ctx, "k"); err != nil {
			t.Fatal(err)
		}
		var got payload
		if ok, _ := m.GetJSON(ctx, "k", &got); ok {
			t.Fatal("esperaba miss tras delete")
		}
		// delete de key inexistente no es error
		if err := m.Delete(ctx, "k"); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("set sobreescribe el valor anterior", func(t *testing.T) {
		m := NewMemory()
		_ = m.SetJSON(ctx, "k", payload{Votes: 1}, 0)
		_ = m.SetJSON(ctx, "k", payload{Votes: 2}, 0)

		var got payload
		if ok, _ := m.GetJSON(ctx, "k", &got); !ok || got.Votes != 2 {
			t.Fatalf("got %+v", got)
		}
		if m.Len() != 1 {
			t.Fatalf("len = %d, want 1", m.Len())
		}
	})
}
