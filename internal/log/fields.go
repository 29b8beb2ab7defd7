package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldIdentity      = "identity"
	FieldUsername      = "username"
	FieldRole          = "role"
	FieldCategory      = "category"
	FieldAmountCents   = "amount_cents"
	FieldTransactionID = "transaction_id"
	FieldQuerySeq      = "query_seq"
	FieldBackend       = "backend"
	FieldAttempt       = "attempt"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentSession = "session"
	ComponentInvite  = "invite"
	ComponentLedger  = "ledger"
	ComponentQueue   = "queue"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentStorage = "storage"
)
