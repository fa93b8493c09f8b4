package scheduler

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRegister_RejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(quietLogger())
	err := s.Register(Job{Name: "broken", Spec: "every now and then", Run: func(context.Context) error { return nil }})
	if err == nil {
		t.Fatal("expected error for an invalid schedule")
	}
}

func TestRegister_AcceptsDescriptors(t *testing.T) {
	s := NewScheduler(quietLogger())
	for _, spec := range []string{"@every 15m", "0 3 * * *", "@hourly"} {
		if err := s.Register(Job{Name: spec, Spec: spec, Run: func(context.Context) error { return nil }}); err != nil {
			t.Errorf("schedule %q: %v", spec, err)
		}
	}
	s.Start()
	s.Stop(context.Background())
}
