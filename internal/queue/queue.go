package queue

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

func EnqueueMediaPurge(asynqClient *asynq.Client, payload MediaPurgePayload) error {
	if len(payload.Keys) == 0 {
		return nil
	}

	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeMediaPurge, taskPayload)

	_, err = asynqClient.Enqueue(task, asynq.MaxRetry(5))
	if err != nil {
		return err
	}

	log.Printf("Media purge scheduled for %d keys", len(payload.Keys))
	return nil
}
