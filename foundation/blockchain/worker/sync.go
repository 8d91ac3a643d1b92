package worker

import "time"

// Sync asks the known peers for their chains and adopts the longest
// valid one.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	replaced, err := w.state.Resolve(w.ctx)
	if err != nil {
		w.evHandler("worker: sync: resolve: ERROR: %s", err)
		return
	}

	_, length := w.state.RetrieveChain()
	w.evHandler("worker: sync: resolve: replaced[%v]: length[%d]", replaced, length)
}

// syncOperations handles the periodic synchronization with peers.
func (w *Worker) syncOperations() {
	w.evHandler("worker: syncOperations: G started")
	defer w.evHandler("worker: syncOperations: G completed")

	// A nil channel blocks forever which turns the ticker case off.
	var tick <-chan time.Time
	if w.ticker != nil {
		tick = w.ticker.C
	}

	for {
		select {
		case <-tick:
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.shut:
			w.evHandler("worker: syncOperations: received shut signal")
			return
		}
	}
}
