// ABOUTME: Data models for CRM entities
// ABOUTME: Defines Session, Contact, Deal, Event and Task plus deal stage rules
package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/shaft/docstore"
)

// Session is the authenticated principal as cached by the client.
type Session struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Deal struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Event keeps Start/End in the store's native timestamp type; callers
// convert with ToTime only when rendering.
type Event struct {
	ID     string             `json:"id"`
	UserID string             `json:"userId"`
	Title  string             `json:"title"`
	Start  docstore.Timestamp `json:"start"`
	End    docstore.Timestamp `json:"end"`
}

type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	StageProspecting   = "Prospecting"
	StageQualification = "Qualification"
	StageProposal      = "Proposal"
	StageNegotiation   = "Negotiation"
	StageClosedWon     = "Closed Won"
	StageClosedLost    = "Closed Lost"
)

// Stages lists deal stages in pipeline order.
var Stages = []string{
	StageProspecting,
	StageQualification,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// IsValidStage reports whether stage is one of Stages.
func IsValidStage(stage string) bool {
	for _, s := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidStage  = errors.New("invalid stage")
)

// ParseAmount parses user input into a finite deal amount.
func ParseAmount(input string) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, input)
	}
	return v, nil
}
