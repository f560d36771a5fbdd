package dto

import (
	"time"

	"github.com/KhushalSainS/flowbit/internal/enum"
)

// AccountResult is the outcome of one account inside an ingestion pass.
type AccountResult struct {
	ConfigID          string                `json:"configId"`
	EmailAddress      string                `json:"emailAddress"`
	Status            enum.AccountRunStatus `json:"status"`
	MessagesProcessed int                   `json:"messagesProcessed"`
	AttachmentsStored int                   `json:"attachmentsStored"`
	DuplicatesSkipped int                   `json:"duplicatesSkipped"`
	Errors            []string              `json:"errors,omitempty"`
}

// RunSummary aggregates a whole pass across all active accounts.
type RunSummary struct {
	RunID             string          `json:"runId"`
	StartedAt         time.Time       `json:"startedAt"`
	FinishedAt        time.Time       `json:"finishedAt"`
	AccountsAttempted int             `json:"accountsAttempted"`
	AccountsFailed    int             `json:"accountsFailed"`
	MessagesProcessed int             `json:"messagesProcessed"`
	AttachmentsStored int             `json:"attachmentsStored"`
	DuplicatesSkipped int             `json:"duplicatesSkipped"`
	Accounts          []AccountResult `json:"accounts"`
}
