package queue

import (
	"github.com/crosspost-app/composer-api/internal/service"
)

// Queue owns the background task handlers.
type Queue struct {
	st service.BlobStorage
}

func NewQueue(st service.BlobStorage) *Queue {
	return &Queue{st: st}
}

const TaskTypeMediaPurge = "media:purge"

// MediaPurgePayload lists blob keys to delete from storage. Deletion runs in
// the background so removal and post-submit cleanup never block a request,
// and failed deletes get asynq's retry.
type MediaPurgePayload struct {
	Keys []string `json:"keys"`
}
