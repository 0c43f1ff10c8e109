package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

func taskID(postID int64) string {
	return fmt.Sprintf("post:%d", postID)
}

// SchedulePost enqueues the publish task for postID to run at at. A task
// still waiting or running for the same post is left as is. One that already
// ran (archived after a failure, or retained as completed) is replaced.
func (q *Queue) SchedulePost(ctx context.Context, postID int64, at time.Time) error {
	taskPayload, err := json.Marshal(PublishPostPayload{PostID: postID})
	if err != nil {
		return err
	}

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	enqueue := func() error {
		_, err := q.client.EnqueueContext(ctx, asynq.NewTask(TaskTypePublishPost, taskPayload),
			asynq.Queue(queueName),
			asynq.ProcessIn(delay),
			asynq.TaskID(taskID(postID)),
			asynq.MaxRetry(0),
		)
		return err
	}

	err = enqueue()
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		var replaced bool
		replaced, err = q.releaseFinished(postID)
		if err == nil && !replaced {
			return nil
		}
		if err == nil {
			err = enqueue()
		}
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	slog.Info("task scheduled", "post_id", postID, "delay", delay.String())
	return nil
}

// releaseFinished deletes the task holding postID's id when it will never
// run again. It reports whether the id is free for a new task.
func (q *Queue) releaseFinished(postID int64) (bool, error) {
	id := taskID(postID)
	info, err := q.inspector.GetTaskInfo(queueName, id)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("inspect task %s: %w", id, err)
	}

	switch info.State {
	case asynq.TaskStateArchived, asynq.TaskStateCompleted:
	default:
		return false, nil
	}

	if err := q.inspector.DeleteTask(queueName, id); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
		return false, fmt.Errorf("delete finished task %s: %w", id, err)
	}
	slog.Info("released finished task", "post_id", postID, "state", info.State.String())
	return true, nil
}
