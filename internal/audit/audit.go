// Package audit records user activity. Recording is fire-and-forget for the
// caller: sink failures are logged, never returned to the request.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/adminpanel/internal/logging"
)

type Action string

const (
	ActionLogin  Action = "LOGIN"
	ActionLogout Action = "LOGOUT"
	ActionUpdate Action = "UPDATE"
	ActionCreate Action = "CREATE"
	ActionDelete Action = "DELETE"
)

type Activity struct {
	ActorID   uint      `json:"user_id"`
	Action    Action    `json:"action"`
	RecordID  string    `json:"record_id"`
	ModelName string    `json:"model_name"`
	IPAddress string    `json:"ip_address"`
	Notes     string    `json:"notes"`
	At        time.Time `json:"actioned_at"`
}

type Recorder interface {
	Record(ctx context.Context, a Activity)
}

// Sink is a destination that can fail.
type Sink interface {
	Write(ctx context.Context, a Activity) error
}

// Fanout writes each activity to every sink and logs the failures.
type Fanout struct {
	Sinks []Sink
	Now   func() time.Time
}

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{Sinks: sinks, Now: time.Now}
}

func (f *Fanout) Record(ctx context.Context, a Activity) {
	if a.At.IsZero() {
		if f.Now != nil {
			a.At = f.Now()
		} else {
			a.At = time.Now()
		}
	}

	var errs []error
	for _, s := range f.Sinks {
		if err := s.Write(ctx, a); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logging.FromContext(ctx).Error("audit_failed",
			"action", string(a.Action), "user_id", a.ActorID, "model", a.ModelName, "error", err)
	}
}
