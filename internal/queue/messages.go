package queue

import (
	"encoding/json"
	"time"
)

// TransactionSyncMessage asks the worker to push one locally captured
// transaction to the remote ledger. It carries only the local row id;
// the worker loads the full row from the offline store.
type TransactionSyncMessage struct {
	LocalID   int64     `json:"local_id"`
	Attempt   int       `json:"attempt"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(localID int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		LocalID:   localID,
		Attempt:   1,
		Timestamp: time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
