package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/onionharvest/internal/model"
)

// recordingStep is a test step that records whether it ran and can be
// told to fail.
type recordingStep struct {
	name string
	err  error
	ran  bool
}

func (s *recordingStep) Do(_ context.Context, _ *model.Session) error {
	s.ran = true
	return s.err
}

func (s *recordingStep) Name() string {
	return s.name
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		first := &funcStep{name: "first", fn: func() { order = append(order, "first") }}
		second := &funcStep{name: "second", fn: func() { order = append(order, "second") }}

		p := New()
		p.AddSteps(first, second)

		if err := p.Execute(context.Background(), &model.Session{}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("execution order = %v, want [first second]", order)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		failure := errors.New("step broke")
		failing := &recordingStep{name: "failing", err: failure}
		after := &recordingStep{name: "after"}

		p := New()
		p.AddSteps(failing, after)

		if err := p.Execute(context.Background(), &model.Session{}); !errors.Is(err, failure) {
			t.Fatalf("Execute() error = %v, want the step failure", err)
		}
		if after.ran {
			t.Error("step after the failure still ran")
		}
	})

	t.Run("continue on error runs remaining steps", func(t *testing.T) {
		t.Parallel()

		failing := &recordingStep{name: "failing", err: errors.New("step broke")}
		after := &recordingStep{name: "after"}

		p := New(WithContinueOnError(true))
		p.AddSteps(failing, after)

		if err := p.Execute(context.Background(), &model.Session{}); err != nil {
			t.Fatalf("Execute() error = %v, want nil with continueOnError", err)
		}
		if !after.ran {
			t.Error("step after the failure did not run")
		}
	})

	t.Run("cancelled context stops before the next step", func(t *testing.T) {
		t.Parallel()

		step := &recordingStep{name: "never"}

		p := New()
		p.AddStep(step)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := p.Execute(ctx, &model.Session{}); !errors.Is(err, context.Canceled) {
			t.Fatalf("Execute() error = %v, want context.Canceled", err)
		}
		if step.ran {
			t.Error("step ran despite cancelled context")
		}
	})

	t.Run("step names reflect execution order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&recordingStep{name: "seed"},
			&recordingStep{name: "crawl"},
			&recordingStep{name: "persist"},
		)

		if got := p.StepCount(); got != 3 {
			t.Errorf("StepCount() = %d, want 3", got)
		}
		want := []string{"seed", "crawl", "persist"}
		got := p.StepNames()
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("StepNames()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})
}

// funcStep runs a closure, for ordering assertions.
type funcStep struct {
	name string
	fn   func()
}

func (s *funcStep) Do(_ context.Context, _ *model.Session) error {
	s.fn()
	return nil
}

func (s *funcStep) Name() string {
	return s.name
}
