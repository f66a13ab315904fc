package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// WriteQueue ejecuta escrituras remotas best-effort en segundo plano (la
// segunda pata del write-through y los deletes de entradas vencidas). El
// caller nunca espera ni ve el error: acá se loguea y listo.
type WriteQueue struct {
	tasks chan queueTask
	wg    sync.WaitGroup
	once  sync.Once
}

type queueTask struct {
	name string
	fn   func(ctx context.Context) error
}

func NewWriteQueue(size int) *WriteQueue {
	if size <= 0 {
		size = 64
	}
	q := &WriteQueue{tasks: make(chan queueTask, size)}
	q.wg.Add(1)
	go q.worker()
	return q
}

func (q *WriteQueue) worker() {
	defer q.wg.Done()
	for t := range q.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := t.fn(ctx); err != nil {
			log.Printf("[write-queue] %s falló: %v", t.name, err)
		}
		cancel()
	}
}

// Enqueue encola sin bloquear; si la cola está llena la tarea se descarta
// (es un caché, la fuente de verdad ya se escribió por otro lado).
func (q *WriteQueue) Enqueue(name string, fn func(ctx context.Context) error) {
	select {
	case q.tasks <- queueTask{name: name, fn: fn}:
	default:
		log.Printf("[write-queue] cola llena, descartando %s", name)
	}
}

// Close deja de aceptar tareas y espera a que se drenen las pendientes.
func (q *WriteQueue) Close() {
	q.once.Do(func() { close(q.tasks) })
	q.wg.Wait()
}
