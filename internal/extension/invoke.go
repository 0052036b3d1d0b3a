package extension

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/ohbot/internal/device"
	"github.com/MrWong99/ohbot/internal/observe"
)

// Result is the outcome of one block. Value is set for reporters only.
type Result struct {
	Value any `json:"value,omitempty"`
}

// Invoke runs block opcode for target with the raw argument bag args and
// returns once the block is complete: device commands after their pacing
// delay, speakAndWait after playback. It returns an error wrapping
// [host.ErrTargetNotFound] or [ErrUnknownOpcode]; speech and device
// failures are logged, not returned.
func (e *Extension) Invoke(ctx context.Context, targetID, opcode string, args map[string]any) (Result, error) {
	call, err := ParseBlock(opcode, args)
	if err != nil {
		return Result{}, err
	}
	if _, err := e.rt.Target(targetID); err != nil {
		return Result{}, fmt.Errorf("extension: %s: %w", opcode, err)
	}

	ctx, span := observe.StartSpan(ctx, "extension.invoke",
		trace.WithAttributes(
			attribute.String("ohbot.opcode", opcode),
			attribute.String("ohbot.target", targetID),
		),
	)
	defer span.End()

	res, err := e.Run(ctx, targetID, call)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "block failed")
	}
	return res, err
}

// Run executes an already parsed call.
func (e *Extension) Run(ctx context.Context, targetID string, call Call) (Result, error) {
	switch c := call.(type) {
	case SetMotorPosition:
		return Result{}, e.command(ctx, device.SetMotor(c.Motor, c.Position))
	case ChangeMotorPosition:
		return Result{}, e.command(ctx, device.ChangeMotor(c.Motor, c.Delta))
	case SetMotorSpeed:
		return Result{}, e.command(ctx, device.MotorSpeed(c.Motor, c.Speed))
	case SetNamedColour:
		return Result{}, e.command(ctx, device.NamedColour(c.Colour))
	case SetRGBColour:
		return Result{}, e.command(ctx, device.ChannelLevel(c.Channel, c.Level))
	case Reset:
		e.Reset(ctx)
		return Result{}, nil
	case Speak:
		var done <-chan struct{}
		var err error
		if c.Wait {
			done, err = e.SpeakAndWait(ctx, targetID, c.Words)
		} else {
			done, err = e.SpeakNoWait(ctx, targetID, c.Words)
		}
		if err != nil {
			return Result{}, err
		}
		select {
		case <-done:
			return Result{}, nil
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	case SetVoice:
		return Result{}, e.SetVoice(targetID, c.Voice)
	case SetLanguage:
		e.SetLanguage(c.Language)
		return Result{}, nil
	case GetLip:
		return Result{Value: e.GetLip()}, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownOpcode, call.Opcode())
	}
}

func (e *Extension) command(ctx context.Context, cmd device.Command) error {
	return e.commander.Run(ctx, cmd)
}
