package bot

import "log/slog"

// serialQueue выполняет задания одного чата строго по одному, в порядке
// постановки. Пока очередь жива, её единственная горутина — владелец
// состояния сессии: стека экранов, черновика и курсора диалога.
type serialQueue struct {
	jobs chan func()
	log  *slog.Logger
}

func newSerialQueue(size int, log *slog.Logger) *serialQueue {
	q := &serialQueue{
		jobs: make(chan func(), size),
		log:  log,
	}
	go q.loop()
	return q
}

func (q *serialQueue) loop() {
	for job := range q.jobs {
		job()
	}
}

// enqueue ставит задание в очередь. Если очередь переполнена (обработчик
// висит на попапе, а апдейты продолжают сыпаться), задание отбрасывается:
// блокировать общий цикл апдейтов нельзя, иначе ответ на попап не дойдёт.
func (q *serialQueue) enqueue(job func()) {
	select {
	case q.jobs <- job:
	default:
		q.log.Warn("session queue full, update dropped")
	}
}
