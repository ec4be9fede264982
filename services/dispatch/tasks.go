package dispatch

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task types consumed by the dispatch worker.
const (
	TypeDispatchFanout = "dispatch:fanout"
	TypeDispatchRetry  = "dispatch:retry"
)

// TaskEnqueuer is the slice of asynq.Client the services need.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// FanoutPayload identifies one dispatch pass. Attempt starts at 1; retry
// tasks carry the expanded radius.
type FanoutPayload struct {
	MissionID string  `json:"missionId"`
	Attempt   int     `json:"attempt"`
	RadiusKm  float64 `json:"radiusKm,omitempty"`
}

// NewFanoutTask builds the initial dispatch task for a freshly searching
// mission.
func NewFanoutTask(missionID string) (*asynq.Task, error) {
	b, err := json.Marshal(FanoutPayload{MissionID: missionID, Attempt: 1})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDispatchFanout, b), nil
}

// NewRetryTask builds a delayed redispatch with an expanded radius.
func NewRetryTask(missionID string, attempt int, radiusKm float64, delay time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(FanoutPayload{MissionID: missionID, Attempt: attempt, RadiusKm: radiusKm})
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{asynq.ProcessIn(delay)}
	return asynq.NewTask(TypeDispatchRetry, b), opts, nil
}
