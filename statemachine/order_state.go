package statemachine

import (
	"fmt"
	"strings"

	"storefront-api/models"
)

const (
	ActorAdmin    = "admin"
	ActorCustomer = "customer"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor string             `json:"actor"`
}

// validTransitions is the canonical order lifecycle
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusAccepted, Actor: ActorAdmin},
	{From: models.StatusAccepted, To: models.StatusPreparing, Actor: ActorAdmin},
	{From: models.StatusPreparing, To: models.StatusShipped, Actor: ActorAdmin},
	{From: models.StatusShipped, To: models.StatusDelivered, Actor: ActorAdmin},

	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorAdmin},
	{From: models.StatusAccepted, To: models.StatusCancelled, Actor: ActorAdmin},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: ActorAdmin},
	{From: models.StatusShipped, To: models.StatusCancelled, Actor: ActorAdmin},

	// Customers may withdraw an order nobody has accepted yet
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorCustomer},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// IsValidStatus reports whether s belongs to the fixed status set.
func IsValidStatus(s models.OrderStatus) bool {
	for _, known := range models.AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusDelivered || s == models.StatusCancelled
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor string) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		from, to, actor, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// CounterDelta is the change to a product's ordered counter when an order
// line of qty units moves from one status to another. Entering delivered
// releases the units, leaving delivered claims them again.
func CounterDelta(from, to models.OrderStatus, qty int) int {
	switch {
	case from == to:
		return 0
	case to == models.StatusDelivered:
		return -qty
	case from == models.StatusDelivered:
		return qty
	default:
		return 0
	}
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
