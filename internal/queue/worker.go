package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleMediaPurgeTask(ctx context.Context, task *asynq.Task) error {
	var payload MediaPurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	var failed int
	for _, key := range payload.Keys {
		if err := q.st.Delete(ctx, key); err != nil {
			log.Printf("Error deleting blob %s: %v", key, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to delete %d of %d blobs", failed, len(payload.Keys))
	}
	return nil
}
