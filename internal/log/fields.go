package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldMemberID   = "member_id"
	FieldMemberName = "member_name"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldFineIndex  = "fine_index"
	FieldDonor      = "donor"
	FieldBackend    = "backend"
	FieldDurable    = "durable"
	FieldReportKind = "report_kind"
	FieldAsOf       = "as_of"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentBackend = "backend"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentReport  = "report"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpLoad    = "load"
	OpSave    = "save"
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpToggle  = "toggle"
	OpClear   = "clear"
	OpRestore = "restore"
	OpPublish = "publish"
	OpConsume = "consume"
	OpRender  = "render"
)
