package workers

import "time"

type deletionKey struct {
	chatID    int64
	messageID int
}

type deletionItem struct {
	key    deletionKey
	fireAt time.Time
	index  int
}

// deletionQueue is a min-heap on fireAt, used through container/heap
type deletionQueue []*deletionItem

func (q deletionQueue) Len() int { return len(q) }

func (q deletionQueue) Less(i, j int) bool { return q[i].fireAt.Before(q[j].fireAt) }

func (q deletionQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *deletionQueue) Push(x any) {
	item := x.(*deletionItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *deletionQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}
