package collisionflow

import "sync"

// task splits data in workersCount chunks and runs fn on each element, one goroutine per chunk.
// fn receives the element index so results can be stored in place.
func task[T any](workersCount int, data []T, fn func(i int, data T)) {
	if workersCount <= 1 || len(data) < 2 {
		for i, d := range data {
			fn(i, d)
		}
		return
	}

	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for start := 0; start < dataSize; start += chunkSize {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i, data[i])
			}
		}(start, min(start+chunkSize, dataSize))
	}
	wg.Wait()
}
