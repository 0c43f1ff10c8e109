package queue

import (
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/socialpro/internal/service"
)

const TaskTypePublishPost = "post:publish"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}

const queueName = "default"

// Queue enqueues scheduled posts on asynq. The inspector frees task ids held
// by finished tasks so a post can be queued again.
type Queue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

func NewQueue(client *asynq.Client, inspector *asynq.Inspector) *Queue {
	return &Queue{client: client, inspector: inspector}
}

// Worker publishes scheduled posts when their task fires.
type Worker struct {
	ps service.PostService
}

func NewWorker(ps service.PostService) *Worker {
	return &Worker{ps: ps}
}
