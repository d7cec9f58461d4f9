package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: a starting instant, a sequence of
// engine operations interleaved with clock advances, and checks against the
// final state.
type Scenario struct {
	// Name uniquely identifies this scenario. Doubles as the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the initial clock reading, RFC3339.
	Start string `yaml:"start"`

	// Steps is the operation flow. Each step either invokes an operation or
	// advances the clock.
	Steps []Step `yaml:"steps"`

	// Checks validate the final state after the flow completes.
	Checks []Check `yaml:"checks,omitempty"`
}

// Step is one flow entry: exactly one of Op or Advance must be set.
type Step struct {
	// Op names the operation to invoke: add_book, add_user, borrow, return,
	// reserve, cancel, sweep, pay_fine, mark_read.
	Op string `yaml:"op,omitempty"`

	// Args holds the operation arguments. Recognized keys depend on the op:
	// book, user, borrow, reservation, notification, title, author, category,
	// name, tier, amount, id.
	Args map[string]string `yaml:"args,omitempty"`

	// Expect is the failure code this step must produce (e.g.
	// LIMIT_EXCEEDED). Empty means the step must succeed.
	Expect string `yaml:"expect,omitempty"`

	// Advance moves the clock forward by a Go duration (e.g. "49h").
	Advance string `yaml:"advance,omitempty"`
}

// Check validates a slice of final state.
type Check struct {
	// Kind selects the check: book_status, user_state, reservation_status,
	// queue_order, notification_count.
	Kind string `yaml:"kind"`

	// Book, User, Reservation identify the entity under check.
	Book        string `yaml:"book,omitempty"`
	User        string `yaml:"user,omitempty"`
	Reservation string `yaml:"reservation,omitempty"`

	// Status is the expected status value (book_status, reservation_status).
	Status string `yaml:"status,omitempty"`

	// Borrows and Fines are the expected member counters (user_state).
	Borrows *int  `yaml:"borrows,omitempty"`
	Fines   *int64 `yaml:"fines,omitempty"`

	// Users is the expected pending queue, head first (queue_order).
	Users []string `yaml:"users,omitempty"`

	// Type and Count describe the expected notifications
	// (notification_count).
	Type  string `yaml:"type,omitempty"`
	Count int    `yaml:"count,omitempty"`
}

// Check kind constants.
const (
	CheckBookStatus        = "book_status"
	CheckUserState         = "user_state"
	CheckReservationStatus = "reservation_status"
	CheckQueueOrder        = "queue_order"
	CheckNotificationCount = "notification_count"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so a typo fails loudly instead of silently skipping a check.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := time.Parse(time.RFC3339, s.Start); err != nil {
		return fmt.Errorf("start must be RFC3339: %w", err)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		switch {
		case step.Op != "" && step.Advance != "":
			return fmt.Errorf("steps[%d]: op and advance are mutually exclusive", i)
		case step.Op == "" && step.Advance == "":
			return fmt.Errorf("steps[%d]: one of op or advance is required", i)
		case step.Advance != "":
			if _, err := time.ParseDuration(step.Advance); err != nil {
				return fmt.Errorf("steps[%d]: bad advance duration: %w", i, err)
			}
			if step.Expect != "" {
				return fmt.Errorf("steps[%d]: advance cannot carry an expect", i)
			}
		}
	}
	for i, check := range s.Checks {
		switch check.Kind {
		case CheckBookStatus, CheckUserState, CheckReservationStatus,
			CheckQueueOrder, CheckNotificationCount:
		default:
			return fmt.Errorf("checks[%d]: unknown kind %q", i, check.Kind)
		}
	}
	return nil
}
