// Package harness provides a conformance framework for the lending engine.
//
// A scenario is a YAML file describing a flow of operations against a fresh
// engine: registrations, borrows, returns, reservations, clock advances, and
// the failure codes particular steps must produce. The harness runs the flow
// with a deterministic clock and sequential op tokens against an in-memory
// SQLite snapshot, records a transcript of every step, and evaluates checks
// against the final state. Transcripts can be compared against golden files
// for byte-exact regression coverage.
package harness

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"biblio/internal/engine"
	"biblio/internal/idgen"
	"biblio/internal/model"
	"biblio/internal/store"
	"biblio/internal/testutil"
)

// seqTokens issues op tokens op-0001, op-0002, ... so transcript-adjacent
// log output is deterministic without declaring a token budget up front.
type seqTokens struct{ n int }

func (g *seqTokens) Generate() string {
	g.n++
	return fmt.Sprintf("op-%04d", g.n)
}

// Harness executes one scenario against a fresh engine.
type Harness struct {
	eng   *engine.Engine
	clock *testutil.FixedClock
}

// Run executes a scenario and returns the result. Each scenario runs in a
// fresh in-memory database for isolation.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("create in-memory store: %w", err)
	}
	defer st.Close()

	start, err := time.Parse(time.RFC3339, scenario.Start)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}
	clock := testutil.NewFixedClock(start)

	h := &Harness{
		eng: engine.New(st, idgen.New(),
			engine.WithClock(clock),
			engine.WithTokens(&seqTokens{})),
		clock: clock,
	}

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}
	h.evaluateChecks(scenario.Checks, result)
	return result, nil
}

// executeStep runs one step, records its transcript event, and validates the
// outcome against the step's expectation.
func (h *Harness) executeStep(ctx context.Context, seq int, step Step, result *Result) error {
	event := StepEvent{Seq: seq + 1, Op: step.Op, Args: step.Args}

	if step.Advance != "" {
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d]: bad advance: %w", seq, err)
		}
		h.clock.Advance(d)
		event.Op = "advance"
		event.Args = map[string]string{"by": step.Advance}
		event.Outcome = "ok"
		result.Transcript = append(result.Transcript, event)
		return nil
	}

	entity, note, opErr := h.invoke(ctx, step)
	event.Entity = entity
	event.Note = note
	if opErr != nil {
		event.Outcome = string(engine.CodeOf(opErr))
		if event.Outcome == "" {
			event.Outcome = "error"
		}
	} else {
		event.Outcome = "ok"
	}
	result.Transcript = append(result.Transcript, event)

	switch {
	case step.Expect == "" && opErr != nil:
		result.AddError("steps[%d] %s: expected success, got %v", seq, step.Op, opErr)
	case step.Expect != "" && opErr == nil:
		result.AddError("steps[%d] %s: expected %s, succeeded", seq, step.Op, step.Expect)
	case step.Expect != "" && event.Outcome != step.Expect:
		result.AddError("steps[%d] %s: expected %s, got %s", seq, step.Op, step.Expect, event.Outcome)
	}
	return nil
}

// invoke dispatches one operation. It returns the id of the entity the step
// created or acted on, plus a short note for transcript context.
func (h *Harness) invoke(ctx context.Context, step Step) (entity, note string, err error) {
	args := step.Args
	switch step.Op {
	case "add_book":
		book, err := h.eng.AddBook(ctx, engine.BookParams{
			ID:       args["id"],
			Title:    args["title"],
			Author:   args["author"],
			Category: args["category"],
		})
		return book.ID, "", err

	case "add_user":
		user, err := h.eng.AddUser(ctx, engine.UserParams{
			ID:   args["id"],
			Name: args["name"],
			Tier: model.MembershipTier(args["tier"]),
		})
		return user.ID, "", err

	case "borrow":
		borrow, err := h.eng.BorrowBook(ctx, args["book"], args["user"])
		if err != nil {
			return "", "", err
		}
		return borrow.ID, "due=" + borrow.DueOn.Format("2006-01-02"), nil

	case "return":
		summary, err := h.eng.ReturnBook(ctx, args["borrow"])
		if err != nil {
			return "", "", err
		}
		note := fmt.Sprintf("fine=%d", summary.Fine)
		if summary.Promoted != nil {
			note += " promoted=" + summary.Promoted.ID
		}
		return summary.Borrow.ID, note, nil

	case "reserve":
		res, err := h.eng.ReserveBook(ctx, args["book"], args["user"])
		return res.ID, "", err

	case "cancel":
		return args["reservation"], "", h.eng.CancelReservation(ctx, args["reservation"])

	case "sweep":
		expired, err := h.eng.SweepExpiredReservations(ctx)
		return "", fmt.Sprintf("expired=%d", expired), err

	case "pay_fine":
		amount, perr := strconv.ParseInt(args["amount"], 10, 64)
		if perr != nil {
			return "", "", fmt.Errorf("bad amount %q: %w", args["amount"], perr)
		}
		return args["user"], "", h.eng.PayFine(ctx, args["user"], amount)

	case "mark_read":
		return args["notification"], "", h.eng.MarkNotificationRead(ctx, args["notification"])

	default:
		return "", "", fmt.Errorf("unknown op %q", step.Op)
	}
}
